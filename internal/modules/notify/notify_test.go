// README: Notification tests: event payload, mail rendering, consumer handling.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"travelbook/internal/logger"
	"travelbook/internal/modules/order"
)

type captureBroker struct {
	key  string
	body []byte
	err  error
}

func (b *captureBroker) Publish(ctx context.Context, key string, body []byte) error {
	b.key, b.body = key, body
	return b.err
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func confirmation() *order.Confirmation {
	return &order.Confirmation{
		OrderID:       42,
		Driver:        order.DriverContact{Name: "Moshe Driver", Phone: "052-2222222"},
		Trip:          order.HiddenTrip{ID: 1, Name: "Secret Falls", Region: "צפון", Hidden: true},
		TripDate:      "1.9.2025, 08:00:00",
		TripAddress:   "Herzl 1, Haifa",
		TripAt:        time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		Participants:  3,
		TravelerName:  "Dana",
		TravelerEmail: "dana@example.com",
	}
}

func TestPublisher_OrderCreatedHidesDestination(t *testing.T) {
	b := &captureBroker{}
	p := NewPublisher(b, logger.Nop())
	if err := p.OrderCreated(context.Background(), confirmation()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if b.key != RoutingOrderCreated {
		t.Fatalf("routing key = %q", b.key)
	}
	if strings.Contains(string(b.body), "Secret Falls") {
		t.Fatalf("event leaks trip name: %s", b.body)
	}
	var ev OrderCreated
	if err := json.Unmarshal(b.body, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.OrderID != 42 || ev.TravelerEmail != "dana@example.com" || ev.Participants != 3 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestPublisher_ReportsBrokerFailure(t *testing.T) {
	p := NewPublisher(&captureBroker{err: errors.New("nack")}, logger.Nop())
	if err := p.OrderCreated(context.Background(), confirmation()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConsumer_HandleSendsMail(t *testing.T) {
	m := &fakeMailer{}
	c := NewConsumer(nil, m, logger.Nop())
	body, _ := json.Marshal(OrderCreatedFrom(confirmation(), time.Now()))

	if err := c.Handle(body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(m.to) != 1 || m.to[0] != "dana@example.com" || m.subject != confirmationSubject {
		t.Fatalf("unexpected mail to=%v subject=%q", m.to, m.subject)
	}
	for _, want := range []string{"Dana", "#42", "1.9.2025, 08:00:00", "Herzl 1, Haifa", "Moshe Driver"} {
		if !strings.Contains(m.body, want) {
			t.Errorf("mail body missing %q", want)
		}
	}
	if strings.Contains(m.body, "Secret Falls") {
		t.Error("mail leaks trip name")
	}
}

func TestConsumer_HandlePoisonMessage(t *testing.T) {
	c := NewConsumer(nil, &fakeMailer{}, logger.Nop())
	if err := c.Handle([]byte("{not json")); !errors.Is(err, errPoison) {
		t.Fatalf("expected poison error, got %v", err)
	}
}

func TestConsumer_HandleSkipsMissingEmail(t *testing.T) {
	m := &fakeMailer{}
	c := NewConsumer(nil, m, logger.Nop())
	ev := OrderCreatedFrom(confirmation(), time.Now())
	ev.TravelerEmail = ""
	body, _ := json.Marshal(ev)
	if err := c.Handle(body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if m.to != nil {
		t.Fatal("mail sent without address")
	}
}

func TestConsumer_HandleMailFailure(t *testing.T) {
	c := NewConsumer(nil, &fakeMailer{err: errors.New("smtp down")}, logger.Nop())
	body, _ := json.Marshal(OrderCreatedFrom(confirmation(), time.Now()))
	err := c.Handle(body)
	if err == nil || errors.Is(err, errPoison) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotMsg []byte
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p", From: "noreply@example.com"})
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotMsg = addr, from, msg
		return nil
	}
	if err := m.Send([]string{"dana@example.com"}, "Hi", "<p>body</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "noreply@example.com" {
		t.Fatalf("addr=%q from=%q", gotAddr, gotFrom)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: Hi\r\n") || !strings.HasSuffix(msg, "\r\n\r\n<p>body</p>") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestSMTPMailer_Unconfigured(t *testing.T) {
	if err := NewSMTPMailer(SMTPConfig{}).Send([]string{"a@b.c"}, "s", "b"); err == nil {
		t.Fatal("expected configuration error")
	}
}
