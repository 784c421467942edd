package client

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// maxPlainMessage bounds how much of a plain-text error body is shown to users.
const maxPlainMessage = 200

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// extractMessage pulls a human readable message out of an error response.
// JSON bodies use "message" or "error"; HTML pages, as served by gateways
// and proxies in front of the API, use the heading or the title.
func extractMessage(contentType, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}

	switch {
	case strings.Contains(contentType, "json") || strings.HasPrefix(body, "{"):
		var parsed errorBody
		if err := json.Unmarshal([]byte(body), &parsed); err != nil {
			log.Debugf("Error body is not valid JSON: %v", err)
			return ""
		}
		if parsed.Message != "" {
			return parsed.Message
		}
		return parsed.Error

	case strings.Contains(contentType, "html") || strings.HasPrefix(body, "<"):
		return extractHTMLMessage(body)
	}

	if len(body) > maxPlainMessage {
		return ""
	}
	return body
}

func extractHTMLMessage(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Debugf("Failed to parse HTML error page: %v", err)
		return ""
	}

	for _, selector := range []string{"h1", "title"} {
		text := strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}
