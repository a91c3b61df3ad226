package notion

import (
	"context"

	"metahub/internal/domain"
	"metahub/internal/util"
)

// CreateLead stores a captured contact in the leads database.
func (c *Client) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	name := lead.Name
	if name == "" {
		name = "Sem nome"
	}
	source := lead.Source
	if source == "" {
		source = "Facebook Ads"
	}
	status := lead.Status
	if status == "" {
		status = "New"
	}
	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = util.NowUTC()
	}
	props := map[string]any{
		"Nome":     titleProp(name),
		"Email":    emailProp(lead.Email),
		"Telefone": phoneProp(lead.Phone),
		"Origem":   selectProp(source),
		"Campanha": richTextProp(lead.Campaign),
		"Data":     dateProp(createdAt),
		"Status":   selectProp(status),
	}
	return c.createPage(ctx, "create_lead", c.LeadsDB, props)
}

// SaveMessage stores an inbound chat message. Messages are immutable once
// written.
func (c *Client) SaveMessage(ctx context.Context, msg domain.InboundMessage) (string, error) {
	contact := msg.From
	if msg.ContactName != "" {
		contact = msg.ContactName
	}
	if contact == "" {
		contact = "Desconhecido"
	}
	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = util.NowUTC()
	}
	props := map[string]any{
		"Contato":    titleProp(contact),
		"Mensagem":   richTextProp(msg.Text),
		"Plataforma": selectProp(string(msg.Platform)),
		"Data":       dateProp(receivedAt),
		"Status":     selectProp("Não lida"),
	}
	return c.createPage(ctx, "save_message", c.MessagesDB, props)
}

// SaveMetrics stores one snapshot per sync call. No dedup or merging.
func (c *Client) SaveMetrics(ctx context.Context, m domain.MetricsSnapshot) (string, error) {
	collectedAt := m.CollectedAt
	if collectedAt.IsZero() {
		collectedAt = util.NowUTC()
	}
	platform := m.Platform
	if platform == "" {
		platform = "Facebook"
	}
	props := map[string]any{
		"Data":        titleProp(collectedAt.Format("02/01/2006")),
		"Impressões":  numberProp(float64(m.Impressions)),
		"Alcance":     numberProp(float64(m.Reach)),
		"Cliques":     numberProp(float64(m.Clicks)),
		"Gastos (R$)": numberProp(m.Spend),
		"CPM":         numberProp(m.CPM),
		"CPC":         numberProp(m.CPC),
		"Plataforma":  selectProp(platform),
	}
	return c.createPage(ctx, "save_metrics", c.MetricsDB, props)
}
