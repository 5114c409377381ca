// internal/notify/content.go
package notify

import (
	"fmt"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

// Email is a rendered-ready subject and page pair.
type Email struct {
	Subject string
	Page    Page
}

func steps(title string, rows ...Row) *Card {
	return &Card{Title: title, Rows: rows}
}

func optional(label string, v *string) []Row {
	if v == nil || *v == "" {
		return nil
	}
	return []Row{{Label: label, Value: *v}}
}

func adminEmail(kind, name, venture string, rows []Row) Email {
	return Email{
		Subject: fmt.Sprintf("New %s: %s", kind, name),
		Page: Page{
			Venture:  venture,
			Title:    "New " + kind,
			Subtitle: "A new submission has arrived and is waiting in the admin dashboard.",
			Card:     &Card{Title: "Submission Details", Rows: rows},
			CTA:      &Link{Label: "Open Dashboard", URL: "https://www.wealthyelephant.com/admin"},
		},
	}
}

// ====================== Contact ======================

func contactUser(name string) Email {
	return Email{
		Subject: "We've Received Your Inquiry – Wealthy Elephant",
		Page: Page{
			Title:    "Thank you, " + name,
			Subtitle: "Your inquiry has been received and is being reviewed by our team.",
			Paragraphs: []string{
				"We appreciate you taking the time to reach out to Wealthy Elephant. Your inquiry is important to us, and we're committed to providing you with the highest level of service.",
				"A dedicated member of our team will carefully review your request and reach out to you within 24-48 business hours.",
			},
			Card: steps("What Happens Next",
				Row{"Step 1", "Our team reviews your inquiry and assesses your requirements"},
				Row{"Step 2", "We prepare a tailored response addressing your needs"},
				Row{"Step 3", "A specialist contacts you to discuss solutions"},
			),
			Closing: "Explore our ventures and discover how we're shaping the future.",
			CTA:     &Link{Label: "Explore Our Ventures", URL: "https://www.wealthyelephant.com"},
		},
	}
}

func contactAdmin(c *model.ContactInquiry) Email {
	return adminEmail("Contact Inquiry", c.Name, "", []Row{
		{"Name", c.Name},
		{"Email", c.Email},
		{"Inquiry Type", c.InquiryType},
		{"Message", c.Message},
	})
}

// ====================== Klin Konnect ======================

func klinRequestUser(name string) Email {
	return Email{
		Subject: "Your Rental Request Has Been Received – Klin Konnect",
		Page: Page{
			Venture:  KlinKonnect,
			Title:    "Welcome, " + name,
			Subtitle: "Your rental request is being processed by our housing specialists.",
			Paragraphs: []string{
				"Thank you for choosing Klin Konnect as your trusted housing partner. We've successfully received your rental request and our team is working to match you with properties that meet your criteria.",
				"Finding the right home is more than a transaction. It's about finding a place where you can thrive.",
			},
			Card: steps("Your Journey With Us",
				Row{"Requirements Analysis", "We review your preferences, budget, and location requirements"},
				Row{"Property Matching", "We curate properties that align with your needs"},
				Row{"Personalized Viewing", "Schedule convenient property tours with our agents"},
			),
			Closing: "A Klin Konnect specialist will contact you within 24 hours.",
			CTA:     &Link{Label: "View Available Properties", URL: "https://www.wealthyelephant.com/klin"},
		},
	}
}

func klinRequestAdmin(r *model.KlinRequest) Email {
	rows := []Row{
		{"Name", r.Name},
		{"Email", r.Email},
		{"Phone", r.Phone},
		{"Property Type", r.PropertyType},
		{"Location", r.Location},
		{"Budget", r.Budget},
	}
	rows = append(rows, optional("Move-in Date", r.MoveInDate)...)
	rows = append(rows, optional("Additional Notes", r.AdditionalNotes)...)
	return adminEmail("Rental Request", r.Name, KlinKonnect, rows)
}

func klinIntelligenceUser(name string) Email {
	return Email{
		Subject: "Intelligence Check Request Received – Klin Konnect",
		Page: Page{
			Venture:  KlinKonnect,
			Title:    "Hello, " + name,
			Subtitle: "Your housing intelligence check is being processed by our verification team.",
			Paragraphs: []string{
				"Thank you for requesting Klin Intelligence services. We've received your request and our specialized verification team has begun processing your inquiry.",
				"Klin Intelligence provides thorough verification services to ensure safe and informed housing decisions.",
			},
			Card: steps("Our Intelligence Services",
				Row{"Background Verification", "Comprehensive identity and background checks"},
				Row{"Credit History Analysis", "Detailed credit assessment and financial evaluation"},
				Row{"Rental History Review", "Previous tenancy verification and reference checks"},
			),
			Closing: "A specialist will contact you within 24-48 hours with your results.",
		},
	}
}

func klinIntelligenceAdmin(c *model.KlinIntelligenceCheck) Email {
	rows := []Row{
		{"Name", c.Name},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Property Address", c.PropertyAddress},
		{"Check Type", c.CheckType},
		{"Urgency", c.Urgency},
	}
	rows = append(rows, optional("Additional Info", c.AdditionalInfo)...)
	return adminEmail("Intelligence Check", c.Name, KlinKonnect, rows)
}

func klinPartnershipUser(contactPerson string) Email {
	return Email{
		Subject: "Partnership Inquiry Received – Wealthy Elephant",
		Page: Page{
			Title:    "Hello, " + contactPerson,
			Subtitle: "Thank you for your interest in partnering with Wealthy Elephant.",
			Paragraphs: []string{
				"We're excited about the possibility of collaborating with you. Your partnership proposal has been received and is under review by our business development team.",
				"We believe in building strategic partnerships that create mutual value and drive innovation.",
			},
			Card: steps("Partnership Evaluation Process",
				Row{"Days 1-2", "Initial review and assessment of your proposal"},
				Row{"Days 3-5", "Strategic evaluation and team discussion"},
				Row{"Days 5-7", "Response and exploration of opportunities"},
			),
			Closing: "Our team will contact you within 3-5 business days.",
			CTA:     &Link{Label: "Learn About Partnerships", URL: "https://www.wealthyelephant.com/partnerships"},
		},
	}
}

func klinPartnershipAdmin(p *model.KlinPartnership) Email {
	rows := []Row{
		{"Company", p.CompanyName},
		{"Contact Person", p.ContactPerson},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Partnership Type", p.PartnershipType},
		{"Description", p.Description},
	}
	rows = append(rows, optional("Website", p.Website)...)
	return adminEmail("Partnership Inquiry", p.CompanyName, "", rows)
}

// ====================== Kaizen Kora ======================

func kaizenProjectUser(name string) Email {
	return Email{
		Subject: "Project Request Received – Kaizen Kora",
		Page: Page{
			Venture:  KaizenKora,
			Title:    "Welcome, " + name,
			Subtitle: "Your project is in the hands of our expert construction team.",
			Paragraphs: []string{
				"Thank you for entrusting Kaizen Kora with your construction project. We've received your request and our team is reviewing your requirements.",
				"We combine traditional craftsmanship with modern innovation to deliver exceptional results.",
			},
			Card: steps("Our Construction Process",
				Row{"Discovery", "In-depth discussion of your vision and objectives"},
				Row{"Planning", "Detailed architectural plans and project timeline"},
				Row{"Execution", "Professional construction with quality assurance"},
			),
			Closing: "A consultant will contact you within 2-3 business days.",
			CTA:     &Link{Label: "Explore Our Projects", URL: "https://www.wealthyelephant.com/kaizen"},
		},
	}
}

func kaizenProjectAdmin(p *model.KaizenProject) Email {
	rows := []Row{
		{"Name", p.Name},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Project Type", p.ProjectType},
		{"Project Scope", p.ProjectScope},
		{"Budget", p.Budget},
		{"Timeline", p.Timeline},
		{"Description", p.Description},
	}
	rows = append(rows, optional("Location", p.Location)...)
	return adminEmail("Project Request", p.Name, KaizenKora, rows)
}

func buildPlannerUser(b *model.BuildPlannerSubmission) Email {
	rows := []Row{
		{"Project Type", b.ProjectType},
		{"Property Size", b.PropertySize},
		{"Budget Range", b.Budget},
	}
	rows = append(rows, optional("Target Start", b.StartDate)...)

	return Email{
		Subject: "Build Planner Submission Received – Kaizen Kora",
		Page: Page{
			Venture:  KaizenKora,
			Title:    "Hello, " + b.Name,
			Subtitle: "Your build plan is being prepared by our planning specialists.",
			Paragraphs: []string{
				"Thank you for using the Kaizen Kora Build Planner. Our specialized planning team is conducting a comprehensive analysis of your requirements.",
			},
			Card: &Card{Title: "Your Project Summary", Rows: rows},
			After: []string{
				"Within 3-5 business days, you'll receive a comprehensive build plan including timeline, cost breakdown, and material recommendations.",
			},
			CTA: &Link{Label: "Schedule Consultation", URL: "https://www.wealthyelephant.com/kaizen/consultation"},
		},
	}
}

func buildPlannerAdmin(b *model.BuildPlannerSubmission) Email {
	rows := []Row{
		{"Name", b.Name},
		{"Email", b.Email},
		{"Phone", b.Phone},
		{"Project Type", b.ProjectType},
		{"Property Size", b.PropertySize},
		{"Budget", b.Budget},
		{"Features", b.Features},
	}
	rows = append(rows, optional("Start Date", b.StartDate)...)
	rows = append(rows, optional("Additional Notes", b.AdditionalNotes)...)
	return adminEmail("Build Planner Submission", b.Name, KaizenKora, rows)
}

// ====================== Newsletter ======================

func newsletterWelcome(name string) Email {
	title := "Welcome"
	if name != "" {
		title += ", " + name
	}
	return Email{
		Subject: "Welcome to the Wealthy Elephant Community",
		Page: Page{
			Title:    title,
			Subtitle: "You're now part of an exclusive network of forward-thinking individuals.",
			Paragraphs: []string{
				"Thank you for subscribing to the Wealthy Elephant newsletter. You've joined a community of innovators and visionaries shaping the future.",
				"As a valued subscriber, you'll receive exclusive insights, market intelligence, and early access to opportunities.",
			},
			Card: steps("What You'll Receive",
				Row{"Market Intelligence", "Weekly insights on real estate trends and opportunities"},
				Row{"Exclusive Listings", "Early access to premium properties"},
				Row{"Expert Knowledge", "Industry insights and professional advice"},
			),
			Closing: "Stay connected and discover how we're building tomorrow's solutions.",
			CTA:     &Link{Label: "Explore Our Ventures", URL: "https://www.wealthyelephant.com"},
		},
	}
}
