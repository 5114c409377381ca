// internal/service/template_service.go
package service

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

const (
	primaryButtonStyle   = "background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;"
	secondaryButtonStyle = "background-color: #f0f0f0; color: #333; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;"
)

//go:embed templates/campaign.html
var campaignFS embed.FS

var campaignLayout = template.Must(template.ParseFS(campaignFS, "templates/campaign.html"))

// CampaignRenderer turns a campaign into the HTML each subscriber receives.
type CampaignRenderer struct {
	FrontendURL string
	APIBaseURL  string
}

// RenderBlocks converts content blocks to HTML. link rewrites image and
// button targets; nil leaves them untouched. Text blocks are trusted admin HTML.
func RenderBlocks(blocks []model.ContentBlock, link func(string) string) string {
	if link == nil {
		link = func(s string) string { return s }
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case model.BlockText:
			parts = append(parts, b.Content)
		case model.BlockImage:
			img := fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: 100%%; height: auto;" />`, attr(b.URL), attr(b.Alt))
			if b.Link != "" {
				img = fmt.Sprintf(`<a href="%s">%s</a>`, attr(link(b.Link)), img)
			}
			parts = append(parts, img)
		case model.BlockButton:
			style := secondaryButtonStyle
			if b.Style == "primary" {
				style = primaryButtonStyle
			}
			parts = append(parts, fmt.Sprintf(`<div style="text-align: center; margin: 20px 0;"><a href="%s" style="%s">%s</a></div>`,
				attr(link(b.Link)), style, html.EscapeString(b.Text)))
		default:
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n")
}

func attr(s string) string {
	return html.EscapeString(s)
}

// Render builds the email for one subscriber with click tracking, the open
// pixel and an unsubscribe link bound to the campaign.
func (r CampaignRenderer) Render(c *model.Campaign, subscriberID string) (string, error) {
	track := func(target string) string { return r.ClickURL(subscriberID, c.ID, target) }
	return r.page(c, RenderBlocks(c.Content.Blocks, track), r.UnsubscribeURL(subscriberID, c.ID), r.OpenPixelURL(subscriberID, c.ID))
}

// RenderTest builds a preview without tracking.
func (r CampaignRenderer) RenderTest(c *model.Campaign) (string, error) {
	return r.page(c, RenderBlocks(c.Content.Blocks, nil), r.FrontendURL+"/unsubscribe?id=", "")
}

func (r CampaignRenderer) ClickURL(subscriberID, campaignID, target string) string {
	q := url.Values{}
	q.Set("c", campaignID)
	q.Set("url", target)
	return fmt.Sprintf("%s/api/newsletter/track/click/%s?%s", r.APIBaseURL, url.PathEscape(subscriberID), q.Encode())
}

func (r CampaignRenderer) OpenPixelURL(subscriberID, campaignID string) string {
	return fmt.Sprintf("%s/api/newsletter/track/open/%s?c=%s", r.APIBaseURL, url.PathEscape(subscriberID), url.QueryEscape(campaignID))
}

func (r CampaignRenderer) UnsubscribeURL(subscriberID, campaignID string) string {
	return fmt.Sprintf("%s/unsubscribe?id=%s&c=%s", r.FrontendURL, url.QueryEscape(subscriberID), url.QueryEscape(campaignID))
}

type campaignPage struct {
	Subject        string
	PreviewText    string
	FromName       string
	Content        template.HTML
	UnsubscribeURL string
	PixelURL       string
}

func (r CampaignRenderer) page(c *model.Campaign, content, unsubscribeURL, pixelURL string) (string, error) {
	var buf bytes.Buffer
	err := campaignLayout.Execute(&buf, campaignPage{
		Subject:     c.Subject,
		PreviewText: c.PreviewText,
		FromName:    c.FromName,
		// blocks are escaped by RenderBlocks, text blocks are trusted admin HTML
		Content:        template.HTML(content),
		UnsubscribeURL: unsubscribeURL,
		PixelURL:       pixelURL,
	})
	if err != nil {
		return "", fmt.Errorf("render campaign %s: %w", c.ID, err)
	}
	return buf.String(), nil
}
