// Package notify turns placed orders into confirmation emails and
// audit log lines.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/iliyamo/distributor-orders/internal/mail"
	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/queue"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Auditor records delivered notifications.
type Auditor interface {
	Write(line string) error
}

var orderTmpl = template.Must(template.New("order").Parse(`<h2>New order received</h2>
<p><strong>Customer:</strong> {{.Customer.Name}} ({{.Customer.Phone}})<br>
<strong>Address:</strong> {{.Customer.Address}}, {{.Customer.City}}<br>
<strong>Fulfillment:</strong> {{.OrderType}}<br>
<strong>Placed:</strong> {{.Timestamp}}</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Code</th><th>Product</th><th>Price</th><th>Qty</th></tr>
{{range .Items}}<tr><td>{{.ProductCode}}</td><td>{{.Title}}</td><td>{{.Price}}</td><td>{{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}</td></tr>
{{end}}</table>
<p><strong>Total:</strong> Rs. {{.Total}}</p>
`))

// Dispatcher emails the configured recipient about each order.
type Dispatcher struct {
	sender Sender
	to     string
	audit  Auditor
}

// NewDispatcher builds a Dispatcher; audit may be nil.
func NewDispatcher(sender Sender, to string, audit Auditor) *Dispatcher {
	return &Dispatcher{sender: sender, to: to, audit: audit}
}

// Render builds the confirmation email for ev.
func (d *Dispatcher) Render(ev queue.OrderPlacedEvent) (mail.Message, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, ev); err != nil {
		return mail.Message{}, fmt.Errorf("render order email: %w", err)
	}
	var text strings.Builder
	fmt.Fprintf(&text, "New order from %s (%s), %s, total Rs. %s\n", ev.Customer.Name, ev.Customer.Phone, ev.OrderType, ev.Total)
	for _, it := range ev.Items {
		fmt.Fprintf(&text, "- %s %s x%d @ %s\n", it.ProductCode, it.Title, it.Quantity, it.Price)
	}
	return mail.Message{
		To:      d.to,
		Subject: fmt.Sprintf("New order from %s", ev.Customer.Name),
		HTML:    buf.String(),
		Text:    text.String(),
	}, nil
}

// Handle sends the email for ev and writes the audit line. It is the
// queue consumer's handler.
func (d *Dispatcher) Handle(ctx context.Context, ev queue.OrderPlacedEvent) error {
	msg, err := d.Render(ev)
	if err != nil {
		return err
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return err
	}
	if d.audit != nil {
		line := fmt.Sprintf("[%s] Order notified | order_id=%s | user_id=%s | customer=%q | type=%s | total=%s | items=%d",
			ev.PlacedAt, ev.OrderID, ev.UserID, ev.Customer.Name, ev.OrderType, ev.Total, len(ev.Items))
		if err := d.audit.Write(line); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
	}
	return nil
}

// Direct notifies in-process, for deployments without a broker.
type Direct struct {
	d *Dispatcher
}

// NewDirect wraps d so the order service can call it synchronously.
func NewDirect(d *Dispatcher) *Direct { return &Direct{d: d} }

// NotifyOrderPlaced runs the dispatcher on the caller's goroutine.
func (n *Direct) NotifyOrderPlaced(ctx context.Context, o model.Order) error {
	return n.d.Handle(ctx, queue.NewOrderPlacedEvent(o))
}
