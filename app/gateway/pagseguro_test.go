package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

func testCreateInput() *CreateInput {
	return &CreateInput{
		Reference: "plan10-acc7-1700000000",
		Payer: Payer{
			Name:     "Maria Souza",
			Email:    "maria@example.com",
			Document: "12345678909",
			Phone:    "11999990000",
		},
		Items: []Item{{
			ID:          "10",
			Description: "subscription premium",
			AmountCents: 4990,
			Quantity:    1,
		}},
	}
}

func newTestClient(serverURL string) *PagSeguroClient {
	return NewPagSeguroClient(PagSeguroConfig{
		BaseURL:         serverURL,
		Email:           "billing@vibast.example",
		Token:           "secret-token",
		NotificationURL: "https://billing.vibast.example/webhooks/gateway/notifications",
	})
}

func TestCreateInstantTransferEncodesFlatKeysAndFetchesPixPayload(t *testing.T) {
	var createForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") != "billing@vibast.example" || r.URL.Query().Get("token") != "secret-token" {
			t.Fatalf("missing credentials on %s", r.URL.String())
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transactions":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse form failed: %v", err)
			}
			createForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":"ABC123","status":1}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transactions/ABC123":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":"ABC123","status":1,"reference":"plan10-acc7-1700000000","grossAmount":"49.90","netAmount":"48.03","paymentMethod":{"type":"pix"},"pix":{"payload":"00020126BR.GOV.BCB.PIX"}}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	output, err := client.CreateInstantTransfer(context.Background(), testCreateInput())
	if err != nil {
		t.Fatalf("create instant transfer failed: %v", err)
	}

	if output.TransactionCode != "ABC123" {
		t.Fatalf("unexpected transaction code: %s", output.TransactionCode)
	}
	if output.Status != StatusPending {
		t.Fatalf("unexpected status: %d", output.Status)
	}
	if output.PixPayload != "00020126BR.GOV.BCB.PIX" {
		t.Fatalf("expected pix payload from detail fetch, got %q", output.PixPayload)
	}

	expectForm := map[string]string{
		"paymentMethod":      "pix",
		"currency":           "BRL",
		"reference":          "plan10-acc7-1700000000",
		"sender[name]":       "Maria Souza",
		"sender[email]":      "maria@example.com",
		"sender[document]":   "12345678909",
		"sender[phone]":      "11999990000",
		"items[0][id]":       "10",
		"items[0][amount]":   "4990",
		"items[0][quantity]": "1",
		"notificationURL":    "https://billing.vibast.example/webhooks/gateway/notifications",
	}
	for key, want := range expectForm {
		got := createForm[key]
		if len(got) != 1 || got[0] != want {
			t.Fatalf("form key %s: expected %q, got %v", key, want, got)
		}
	}
}

func TestCreateCardSendsInstallmentPlanWithCeilingSplit(t *testing.T) {
	var createForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form failed: %v", err)
		}
		createForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"CARD42","status":1}`))
	}))
	defer server.Close()

	input := testCreateInput()
	input.Items[0].AmountCents = 10000
	input.Card = &CardData{
		Token:          "tok_1",
		HolderName:     "MARIA SOUZA",
		HolderDocument: "12345678909",
		Installments:   3,
	}

	client := newTestClient(server.URL)
	output, err := client.CreateCard(context.Background(), input)
	if err != nil {
		t.Fatalf("create card failed: %v", err)
	}
	if output.TransactionCode != "CARD42" {
		t.Fatalf("unexpected transaction code: %s", output.TransactionCode)
	}

	if got := createForm["paymentMethod"]; len(got) != 1 || got[0] != "creditCard" {
		t.Fatalf("expected creditCard payment method, got %v", got)
	}
	if got := createForm["creditCard[token]"]; len(got) != 1 || got[0] != "tok_1" {
		t.Fatalf("expected card token, got %v", got)
	}
	if got := createForm["creditCard[installments][quantity]"]; len(got) != 1 || got[0] != "3" {
		t.Fatalf("expected 3 installments, got %v", got)
	}
	// 10000 over 3 rounds up so the plan never undershoots the total.
	if got := createForm["creditCard[installments][amount]"]; len(got) != 1 || got[0] != "3334" {
		t.Fatalf("expected per-installment amount 3334, got %v", got)
	}
}

func TestCreateCardRequiresInstrument(t *testing.T) {
	client := newTestClient("http://localhost:0")

	input := testCreateInput()
	if _, err := client.CreateCard(context.Background(), input); err == nil {
		t.Fatal("expected error without card data")
	}

	input.Card = &CardData{HolderName: "MARIA SOUZA", HolderDocument: "12345678909"}
	if _, err := client.CreateCard(context.Background(), input); err == nil {
		t.Fatal("expected error without card token")
	}
}

func TestCreateBusinessRejectionTravelsAsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"53047","message":"card declined by issuer"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	output, err := client.CreateVoucher(context.Background(), testCreateInput())
	if err != nil {
		t.Fatalf("business rejection must not be an error, got %v", err)
	}
	if output.Declined == nil {
		t.Fatal("expected decline details")
	}
	if output.Declined.Code != "53047" || output.Declined.Message != "card declined by issuer" {
		t.Fatalf("unexpected decline details: %+v", output.Declined)
	}
	if output.TransactionCode != "" {
		t.Fatal("declined checkout must not carry a transaction code")
	}
}

func TestCreateTransportFaultIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.CreateVoucher(context.Background(), testCreateInput()); err == nil {
		t.Fatal("expected transport fault to surface as error")
	}
}

func TestFetchNotificationResolvesPointerToDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/transactions/notifications/NOTIF-1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"ABC123","status":3,"reference":"plan10-acc7-1700000000","grossAmount":"49.90","netAmount":"48.03","paymentMethod":{"type":"boleto"},"paymentLink":"https://gateway.example/boleto/ABC123"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	detail, err := client.FetchNotification(context.Background(), "NOTIF-1")
	if err != nil {
		t.Fatalf("fetch notification failed: %v", err)
	}

	if detail.Code != "ABC123" {
		t.Fatalf("unexpected code: %s", detail.Code)
	}
	if detail.Status != StatusPaid || detail.StatusText != "paid" {
		t.Fatalf("unexpected status: %d %s", detail.Status, detail.StatusText)
	}
	if detail.GrossAmountCents != 4990 || detail.NetAmountCents != 4803 {
		t.Fatalf("amounts must parse exactly: gross=%d net=%d", detail.GrossAmountCents, detail.NetAmountCents)
	}
	if detail.PaymentMethod != entity.PaymentMethodVoucher {
		t.Fatalf("unexpected payment method: %d", detail.PaymentMethod)
	}
	if detail.VoucherURL == nil || *detail.VoucherURL != "https://gateway.example/boleto/ABC123" {
		t.Fatal("expected voucher url from detail")
	}
}

func TestCancelTransactionPostsToCancelEndpoint(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.CancelTransaction(context.Background(), "ABC123"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if path != "/v2/transactions/ABC123/cancel" {
		t.Fatalf("unexpected cancel path: %s", path)
	}
}

func TestInstallmentAmountCents(t *testing.T) {
	cases := []struct {
		total        int64
		installments int32
		want         int64
	}{
		{10000, 1, 10000},
		{10000, 3, 3334},
		{9999, 3, 3333},
		{4990, 2, 2495},
		{100, 12, 9},
	}
	for _, c := range cases {
		if got := installmentAmountCents(c.total, c.installments); got != c.want {
			t.Fatalf("installmentAmountCents(%d, %d) = %d, want %d", c.total, c.installments, got, c.want)
		}
	}
}

func TestStatusTextCoversGatewayTable(t *testing.T) {
	want := map[int32]string{
		StatusPending:    "pending",
		StatusInAnalysis: "in_analysis",
		StatusPaid:       "paid",
		StatusAvailable:  "available",
		StatusInDispute:  "in_dispute",
		StatusRefunded:   "refunded",
		StatusCancelled:  "cancelled",
	}
	for code, text := range want {
		if got := StatusText(code); got != text {
			t.Fatalf("StatusText(%d) = %s, want %s", code, got, text)
		}
	}
	if got := StatusText(99); got != "unknown" {
		t.Fatalf("StatusText(99) = %s, want unknown", got)
	}
}
