package telegram

import (
	"fmt"
	"strings"
)

// BuildCaption renders the Markdown caption posted under every video: bold
// title, a link back to the source, then the channel hashtags.
func BuildCaption(title, videoURL string, hashtags []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎥 **%s**\n\n", title)
	fmt.Fprintf(&b, "🔗 [مشاهده در یوتیوب](%s)", videoURL)
	if len(hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(hashtags, " "))
	}
	return b.String()
}
