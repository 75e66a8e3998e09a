// Package telegram is a minimal Bot API client covering the two calls the
// service makes: getMe at startup and sendVideo for the pipeline.
package telegram

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/shortcast/shortcast/apperr"
)

const DefaultBaseURL = "https://api.telegram.org"

// Client posts to a single chat with a single bot token.
type Client struct {
	BaseURL string
	Token   string
	ChatID  string
	HTTP    *http.Client
	Logger  *logrus.Logger
}

func NewClient(token, chatID string, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Token:   token,
		ChatID:  chatID,
		// video uploads of a few tens of MB over slow links take a while
		HTTP:   &http.Client{Timeout: 5 * time.Minute},
		Logger: logger,
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64  `json:"message_id"`
		Username  string `json:"username"`
	} `json:"result"`
}

// GetMe validates the bot token and returns the bot's username.
func (c *Client) GetMe(ctx context.Context) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getMe"), nil)
	if err != nil {
		return "", err
	}
	response, err := c.HTTP.Do(request)
	if err != nil {
		return "", apperr.Wrap(err, apperr.ErrTelegram, "could not reach the bot api")
	}
	defer response.Body.Close()
	parsed, err := decodeResponse(response.Body)
	if err != nil {
		return "", err
	}
	return parsed.Result.Username, nil
}

// SendVideo streams the file at path to the configured chat and returns the
// posted message id. The upload is multipart and never buffers the whole
// video in memory.
func (c *Client) SendVideo(ctx context.Context, path, caption string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)

	go func() {
		err := writeVideoForm(form, file, c.ChatID, caption)
		form.Close()
		pipeWriter.CloseWithError(err)
	}()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendVideo"), pipeReader)
	if err != nil {
		return 0, err
	}
	request.Header.Set("Content-Type", form.FormDataContentType())

	response, err := c.HTTP.Do(request)
	if err != nil {
		c.Logger.WithFields(logrus.Fields{
			"error": err.Error(),
			"file":  path,
		}).Error("sendVideo request failed")
		return 0, apperr.Wrap(err, apperr.ErrTelegram, "could not reach the bot api")
	}
	defer response.Body.Close()

	parsed, err := decodeResponse(response.Body)
	if err != nil {
		return 0, err
	}
	if response.StatusCode != http.StatusOK {
		return 0, apperr.WithFields(apperr.ErrTelegram, map[string]any{
			"status":      response.StatusCode,
			"description": parsed.Description,
		})
	}
	return parsed.Result.MessageID, nil
}

func writeVideoForm(form *multipart.Writer, file *os.File, chatID, caption string) error {
	fields := map[string]string{
		"chat_id":            chatID,
		"caption":            caption,
		"parse_mode":         "Markdown",
		"supports_streaming": "true",
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("video", filepath.Base(file.Name()))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func decodeResponse(body io.Reader) (apiResponse, error) {
	var parsed apiResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return parsed, apperr.Wrap(err, apperr.ErrTelegram, "unparseable bot api response")
	}
	if !parsed.Ok {
		description := parsed.Description
		if description == "" {
			description = "bot api rejected the request"
		}
		return parsed, apperr.Wrap(fmt.Errorf("bot api: %s", description), apperr.ErrTelegram, description)
	}
	return parsed, nil
}
