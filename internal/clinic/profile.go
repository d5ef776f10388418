// Package clinic holds the practice's public profile: identity, services,
// testimonials and the slot roster patients book from.
package clinic

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wolfman30/clinic-booking/internal/availability"
)

// Service is one offering shown on the landing page.
type Service struct {
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
	Duration    string `toml:"duration" json:"duration"`
}

// Testimonial is a patient quote.
type Testimonial struct {
	Text   string `toml:"text" json:"text"`
	Author string `toml:"author" json:"author"`
}

// Profile is the deployment-wide clinic description.
type Profile struct {
	Name         string        `toml:"name" json:"name"`
	Practitioner string        `toml:"practitioner" json:"practitioner"`
	Badge        string        `toml:"badge" json:"badge"`
	Headline     string        `toml:"headline" json:"headline"`
	Description  string        `toml:"description" json:"description"`
	InstagramURL string        `toml:"instagram_url" json:"instagram_url,omitempty"`
	Timezone     string        `toml:"timezone" json:"timezone"`
	Slots        []string      `toml:"slots" json:"slots"`
	AgendaStart  int           `toml:"agenda_start_hour" json:"agenda_start_hour"`
	AgendaEnd    int           `toml:"agenda_end_hour" json:"agenda_end_hour"`
	Services     []Service     `toml:"services" json:"services"`
	Testimonials []Testimonial `toml:"testimonials" json:"testimonials"`
}

// DefaultProfile returns the built-in profile for Mente Novedosa.
func DefaultProfile() *Profile {
	return &Profile{
		Name:         "Mente Novedosa",
		Practitioner: "Psicóloga Rut Ordoñez",
		Badge:        "Psicóloga General",
		Headline:     "Un lugar seguro para tu proceso emocional",
		Description:  "Empatía, respeto y herramientas para tu bienestar.",
		InstagramURL: "https://www.instagram.com/mentenovedosa",
		Timezone:     "America/Mexico_City",
		Slots: []string{
			"08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
			"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
		},
		AgendaStart: 8,
		AgendaEnd:   17,
		Services: []Service{
			{
				Title:       "Terapia Individual",
				Description: "Psicoterapia enfocada en tu proceso, bienestar y equilibrio emocional.",
				Duration:    "60 min",
			},
			{
				Title:       "Orientación vocacional y profesional",
				Description: "Acompañamiento a adolescentes y jóvenes en decisiones académicas y profesionales.",
				Duration:    "45 min",
			},
			{
				Title:       "Talleres psicoeducativos",
				Description: "Talleres para escuelas y empresas enfocados en bienestar emocional y desarrollo personal.",
				Duration:    "90-120 min",
			},
		},
		Testimonials: []Testimonial{
			{Text: "Rut me ayudó a entender mis patrones de ansiedad. Me siento mucho más segura y tranquila ahora.", Author: "María G."},
			{Text: "La mejor decisión que tomé fue empezar terapia. Rut es muy profesional y empática.", Author: "Carlos R."},
		},
	}
}

// LoadProfile decodes a TOML profile over the defaults. An empty path or a
// missing file yields the default profile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultProfile(), nil
	}

	var profile Profile
	md, err := toml.DecodeFile(path, &profile)
	if err != nil {
		return nil, fmt.Errorf("clinic: decode profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("clinic: unknown profile keys %v", undecoded)
	}
	profile.fillDefaults(md, DefaultProfile())
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// fillDefaults copies every top-level key the file left undefined from def.
func (p *Profile) fillDefaults(md toml.MetaData, def *Profile) {
	strs := map[string]*string{
		"name":          &p.Name,
		"practitioner":  &p.Practitioner,
		"badge":         &p.Badge,
		"headline":      &p.Headline,
		"description":   &p.Description,
		"instagram_url": &p.InstagramURL,
		"timezone":      &p.Timezone,
	}
	defaults := map[string]string{
		"name":          def.Name,
		"practitioner":  def.Practitioner,
		"badge":         def.Badge,
		"headline":      def.Headline,
		"description":   def.Description,
		"instagram_url": def.InstagramURL,
		"timezone":      def.Timezone,
	}
	for key, field := range strs {
		if !md.IsDefined(key) {
			*field = defaults[key]
		}
	}
	if !md.IsDefined("slots") {
		p.Slots = def.Slots
	}
	if !md.IsDefined("agenda_start_hour") {
		p.AgendaStart = def.AgendaStart
	}
	if !md.IsDefined("agenda_end_hour") {
		p.AgendaEnd = def.AgendaEnd
	}
	if !md.IsDefined("services") {
		p.Services = def.Services
	}
	if !md.IsDefined("testimonials") {
		p.Testimonials = def.Testimonials
	}
}

// Validate checks the roster, timezone and agenda hours.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("clinic: profile name is required")
	}
	if _, err := p.Roster(); err != nil {
		return fmt.Errorf("clinic: %w", err)
	}
	if _, err := p.Location(); err != nil {
		return err
	}
	if p.AgendaStart < 0 || p.AgendaEnd > 23 || p.AgendaStart > p.AgendaEnd {
		return fmt.Errorf("clinic: invalid agenda hours %d-%d", p.AgendaStart, p.AgendaEnd)
	}
	return nil
}

// Roster parses the profile's slot labels.
func (p *Profile) Roster() (availability.Roster, error) {
	return availability.ParseRoster(p.Slots)
}

// Location resolves the clinic timezone.
func (p *Profile) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("clinic: load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}
