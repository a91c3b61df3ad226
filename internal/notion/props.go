package notion

import "time"

// Prop is the union of property payloads the hub reads. A record with a
// missing or differently-typed property decodes to zero values instead of
// failing the whole page, so one malformed record never blocks a listing.
type Prop struct {
	Title    []richText `json:"title"`
	RichText []richText `json:"rich_text"`
	Select   *option    `json:"select"`
	Status   *option    `json:"status"`
	URL      string     `json:"url"`
	Date     *dateValue `json:"date"`
	Number   *float64   `json:"number"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type option struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// Text extracts the plain-text value of a title, rich_text, select or status
// property. Empty string when absent.
func (p Prop) Text() string {
	if len(p.Title) > 0 {
		return p.Title[0].PlainText
	}
	if len(p.RichText) > 0 {
		return p.RichText[0].PlainText
	}
	if p.Select != nil {
		return p.Select.Name
	}
	if p.Status != nil {
		return p.Status.Name
	}
	return ""
}

func (p Prop) URLValue() string {
	return p.URL
}

func (p Prop) DateValue() (time.Time, bool) {
	if p.Date == nil || p.Date.Start == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, p.Date.Start)
	if err != nil {
		// Notion also emits date-only starts
		t, err = time.Parse("2006-01-02", p.Date.Start)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}

func (p Prop) NumberValue() float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}

func titleProp(s string) map[string]any {
	return map[string]any{"title": []any{map[string]any{"text": map[string]any{"content": s}}}}
}

func richTextProp(s string) map[string]any {
	return map[string]any{"rich_text": []any{map[string]any{"text": map[string]any{"content": s}}}}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func statusProp(name string) map[string]any {
	return map[string]any{"status": map[string]any{"name": name}}
}

func dateProp(t time.Time) map[string]any {
	return map[string]any{"date": map[string]any{"start": t.UTC().Format(time.RFC3339)}}
}

func numberProp(n float64) map[string]any {
	return map[string]any{"number": n}
}

func urlProp(u string) map[string]any {
	return map[string]any{"url": u}
}

func emailProp(e string) map[string]any {
	if e == "" {
		return map[string]any{"email": nil}
	}
	return map[string]any{"email": e}
}

func phoneProp(p string) map[string]any {
	if p == "" {
		return map[string]any{"phone_number": nil}
	}
	return map[string]any{"phone_number": p}
}
