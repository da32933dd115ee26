// Package types provides type definitions for structured data used throughout the cv editor.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CVData is the structured document edited in the data-bearing modes.
// Section and item order is presentation order.
type CVData struct {
	Personal Personal  `json:"personal"`
	Summary  string    `json:"summary,omitempty"`
	Sections []Section `json:"sections" validate:"min=1,dive"`
}

// Personal holds the contact block rendered at the top of the CV
type Personal struct {
	Name     string `json:"name" validate:"required"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Location string `json:"location" validate:"required"`
	Links    []Link `json:"links,omitempty" validate:"omitempty,dive"`
}

// Link is a named external profile (GitHub, portfolio, ...)
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url" validate:"url"`
	Icon string `json:"icon,omitempty"`
}

// Section is a headed group of items such as "Work Experience"
type Section struct {
	ID      string `json:"id" validate:"required"`
	Heading string `json:"heading" validate:"required"`
	Items   []Item `json:"items" validate:"min=1,dive"`
}

// Item is a single entry within a section
type Item struct {
	Title    string   `json:"title" validate:"required"`
	Subtitle string   `json:"subtitle,omitempty"`
	Period   *Period  `json:"period,omitempty"`
	Location string   `json:"location,omitempty"`
	Content  []string `json:"content,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Period is a free-form date range; either end may be omitted
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Clone returns a deep copy of cv.
func (cv *CVData) Clone() *CVData {
	if cv == nil {
		return nil
	}
	out := *cv
	out.Personal.Links = append([]Link(nil), cv.Personal.Links...)
	if cv.Sections != nil {
		out.Sections = make([]Section, len(cv.Sections))
		for i, s := range cv.Sections {
			out.Sections[i] = s
			if s.Items != nil {
				out.Sections[i].Items = make([]Item, len(s.Items))
				for j, item := range s.Items {
					item.Content = append([]string(nil), item.Content...)
					item.Tags = append([]string(nil), item.Tags...)
					if item.Period != nil {
						p := *item.Period
						item.Period = &p
					}
					out.Sections[i].Items[j] = item
				}
			}
		}
	}
	return &out
}
