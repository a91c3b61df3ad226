// Package normalize maps the three inbound webhook payload shapes (page,
// whatsapp_business_account, instagram) onto the hub's canonical entities.
// Malformed payloads never panic past this boundary; callers get zero values
// and an ok=false instead.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"metahub/internal/domain"
	"metahub/internal/meta"
)

const (
	ObjectPage      = "page"
	ObjectWhatsApp  = "whatsapp_business_account"
	ObjectInstagram = "instagram"
)

// Event is the webhook envelope shared by all Meta webhook objects.
type Event struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Changes   []Change    `json:"changes"`
	Messaging []Messaging `json:"messaging"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue is shared between leadgen changes (page object) and message
// changes (whatsapp object); unused fields stay zero.
type ChangeValue struct {
	LeadgenID string `json:"leadgen_id"`
	AdID      string `json:"ad_id"`
	FormID    string `json:"form_id"`

	MessagingProduct string            `json:"messaging_product"`
	Contacts         []waContact       `json:"contacts"`
	Messages         []waMessage       `json:"messages"`
	Statuses         []json.RawMessage `json:"statuses"`
}

type Messaging struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *MessagePayload `json:"message"`
}

type MessagePayload struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo"`
}

type waContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type waMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// LeadRef points at a lead form submission to be resolved via the Graph API.
type LeadRef struct {
	LeadgenID string
	AdID      string
}

// ParseEvent decodes a raw webhook body. An undecodable body yields a zero
// Event and the error for logging; callers must not fail the webhook on it.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(body, &ev)
	return ev, err
}

// Normalizer converts webhook events into leads and inbound messages.
type Normalizer struct {
	// StrictLeadFields switches the lead field heuristic from substring
	// matching to an exact label allow-list.
	StrictLeadFields bool
}

// LeadRefs extracts leadgen references from a page event.
func (n *Normalizer) LeadRefs(ev Event) []LeadRef {
	if ev.Object != ObjectPage {
		return nil
	}
	var refs []LeadRef
	for _, entry := range ev.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" || change.Value.LeadgenID == "" {
				continue
			}
			refs = append(refs, LeadRef{
				LeadgenID: change.Value.LeadgenID,
				AdID:      change.Value.AdID,
			})
		}
	}
	return refs
}

// Messages extracts inbound chat messages from a page or instagram event.
// Echoes of the hub's own outbound messages are dropped to prevent loops.
func (n *Normalizer) Messages(ev Event) []domain.InboundMessage {
	var platform domain.MessagePlatform
	switch ev.Object {
	case ObjectPage:
		platform = domain.MessageMessenger
	case ObjectInstagram:
		platform = domain.MessageInstagramDM
	default:
		return nil
	}

	var msgs []domain.InboundMessage
	for _, entry := range ev.Entry {
		for _, m := range entry.Messaging {
			if m.Message == nil || m.Message.IsEcho || m.Sender.ID == "" {
				continue
			}
			msgs = append(msgs, domain.InboundMessage{
				From:       m.Sender.ID,
				Text:       m.Message.Text,
				Platform:   platform,
				MessageID:  m.Message.MID,
				ReceivedAt: msgTime(m.Timestamp),
			})
		}
	}
	return msgs
}

// WhatsAppMessage extracts the inbound message from a business-account event.
// Status-only payloads (delivery receipts) return ok=false: nothing to store.
func (n *Normalizer) WhatsAppMessage(ev Event) (domain.InboundMessage, bool) {
	if ev.Object != ObjectWhatsApp {
		return domain.InboundMessage{}, false
	}
	for _, entry := range ev.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 {
				continue
			}
			m := value.Messages[0]
			if m.From == "" {
				continue
			}
			msg := domain.InboundMessage{
				From:       m.From,
				Platform:   domain.MessageWhatsApp,
				MessageID:  m.ID,
				ReceivedAt: waTime(m.Timestamp),
			}
			if m.Text != nil {
				msg.Text = m.Text.Body
			}
			if len(value.Contacts) > 0 && value.Contacts[0].Profile.Name != "" {
				msg.ContactName = value.Contacts[0].Profile.Name
			} else {
				msg.ContactName = m.From
			}
			return msg, true
		}
	}
	return domain.InboundMessage{}, false
}

// ParseLeadFields maps lead form fields onto name/email/phone. Labels are
// matched case-insensitively with separators stripped, so "Full Name" and
// "E-mail" land where expected. Unmatched fields are dropped; when two fields
// match the same slot the later one wins.
func (n *Normalizer) ParseLeadFields(fields []meta.LeadField) domain.Lead {
	var lead domain.Lead
	for _, f := range fields {
		if len(f.Values) == 0 {
			continue
		}
		label := normalizeLabel(f.Name)
		value := f.Values[0]

		switch {
		case n.matchesName(label):
			lead.Name = value
		case n.matchesEmail(label):
			lead.Email = value
		case n.matchesPhone(label):
			lead.Phone = value
		}
	}
	return lead
}

func (n *Normalizer) matchesName(label string) bool {
	if n.StrictLeadFields {
		return label == "name" || label == "fullname" || label == "nome" || label == "nomecompleto"
	}
	return strings.Contains(label, "name") || strings.Contains(label, "nome")
}

func (n *Normalizer) matchesEmail(label string) bool {
	if n.StrictLeadFields {
		return label == "email"
	}
	return strings.Contains(label, "email")
}

func (n *Normalizer) matchesPhone(label string) bool {
	if n.StrictLeadFields {
		return label == "phone" || label == "phonenumber" || label == "telefone"
	}
	return strings.Contains(label, "phone") || strings.Contains(label, "telefone")
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, s)
}

func msgTime(millis int64) time.Time {
	if millis <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(millis).UTC()
}

func waTime(unix string) time.Time {
	if unix == "" {
		return time.Now().UTC()
	}
	var sec int64
	for _, r := range unix {
		if r < '0' || r > '9' {
			return time.Now().UTC()
		}
		sec = sec*10 + int64(r-'0')
	}
	return time.Unix(sec, 0).UTC()
}
