// internal/notify/templates.go
package notify

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

const (
	BrandName   = "Wealthy Elephant"
	KlinKonnect = "Klin Konnect"
	KaizenKora  = "Kaizen Kora"

	logoURL      = "https://res.cloudinary.com/dbehg8jsv/image/upload/v1771604825/DP_2.jpg-removebg-preview_gajxwa.png"
	contactEmail = "wealthyelephant@gmail.com"
)

//go:embed templates/*.html
var templateFS embed.FS

var layout = template.Must(template.ParseFS(templateFS, "templates/layout.html"))

type Row struct {
	Label string
	Value string
}

type Card struct {
	Title string
	Rows  []Row
}

type Link struct {
	Label string
	URL   string
}

type SocialGroup struct {
	Name  string
	Links []Link
}

// Page is everything the shared layout renders. User input placed in any
// field is escaped.
type Page struct {
	Venture    string
	Title      string
	Subtitle   string
	Paragraphs []string
	Card       *Card
	After      []string
	Closing    string
	CTA        *Link
}

type layoutData struct {
	Page
	Brand        string
	Logo         string
	Year         int
	Socials      []SocialGroup
	ContactEmail string
}

var socialGroups = []SocialGroup{
	{Name: BrandName, Links: []Link{
		{Label: "LinkedIn", URL: "https://www.linkedin.com/company/wealthy-elephant/"},
		{Label: "Instagram", URL: "https://www.instagram.com/wealthy.elephant?igsh=MXJ0ZzF3NmtrY2o2dg=="},
		{Label: "TikTok", URL: "https://www.tiktok.com/@wealthy.elephant?_r=1&_t=ZS-945GEaMrjNMh"},
	}},
	{Name: KlinKonnect, Links: []Link{
		{Label: "Instagram", URL: "https://www.instagram.com/klinkonnect?igsh=MTJqZms1dGRzNjRtdg=="},
		{Label: "TikTok", URL: "https://www.tiktok.com/@klinkonnect1?_r=1&_t=ZS-945GGrhQUkv"},
	}},
	{Name: KaizenKora, Links: []Link{
		{Label: "Instagram", URL: "https://www.instagram.com/kaizenkora?igsh=ZTlqdDFwMjVwZXZp"},
	}},
}

// Render executes the shared layout for p.
func Render(p Page) (string, error) {
	return render(p, time.Now())
}

func render(p Page, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, layoutData{
		Page:         p,
		Brand:        BrandName,
		Logo:         logoURL,
		Year:         now.Year(),
		Socials:      socialGroups,
		ContactEmail: contactEmail,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
