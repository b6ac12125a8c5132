package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

const (
	methodPix        = "pix"
	methodCreditCard = "creditCard"
	methodBoleto     = "boleto"
)

type PagSeguroConfig struct {
	BaseURL         string
	Email           string
	Token           string
	NotificationURL string
	HTTPTimeout     time.Duration
}

// PagSeguroClient talks to the gateway's flat key-value call convention.
// Amounts cross this boundary as integer minor units on the way out and as
// decimal-string major units on the way back; both conversions are exact.
type PagSeguroClient struct {
	cfg    PagSeguroConfig
	client *http.Client
}

func NewPagSeguroClient(cfg PagSeguroConfig) *PagSeguroClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &PagSeguroClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *PagSeguroClient) CreateInstantTransfer(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	output, err := c.createTransaction(ctx, methodPix, input, nil)
	if err != nil || output.Declined != nil {
		return output, err
	}

	// The creation response does not carry the machine-readable payment
	// payload; it only exists on the transaction detail record.
	detail, err := c.GetTransaction(ctx, output.TransactionCode)
	if err != nil {
		return nil, fmt.Errorf("fetch pix payload for %s: %w", output.TransactionCode, err)
	}
	if detail.PixPayload != nil {
		output.PixPayload = *detail.PixPayload
	}

	return output, nil
}

func (c *PagSeguroClient) CreateCard(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input.Card == nil {
		return nil, errors.New("card data is required")
	}
	if strings.TrimSpace(input.Card.Token) == "" {
		return nil, errors.New("card token is required")
	}
	if strings.TrimSpace(input.Card.HolderName) == "" || strings.TrimSpace(input.Card.HolderDocument) == "" {
		return nil, errors.New("card holder identity is required")
	}

	installments := input.Card.Installments
	if installments <= 0 {
		installments = 1
	}

	values := url.Values{}
	values.Set("creditCard[token]", input.Card.Token)
	values.Set("creditCard[holder][name]", input.Card.HolderName)
	values.Set("creditCard[holder][document]", input.Card.HolderDocument)
	values.Set("creditCard[installments][quantity]", strconv.FormatInt(int64(installments), 10))
	values.Set("creditCard[installments][amount]", strconv.FormatInt(installmentAmountCents(totalAmountCents(input.Items), installments), 10))

	return c.createTransaction(ctx, methodCreditCard, input, values)
}

func (c *PagSeguroClient) CreateVoucher(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	return c.createTransaction(ctx, methodBoleto, input, nil)
}

func (c *PagSeguroClient) GetTransaction(ctx context.Context, code string) (*TransactionDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("transaction code is required")
	}
	return c.fetchDetail(ctx, "/v2/transactions/"+url.PathEscape(code))
}

// FetchNotification resolves an inbound notification pointer into the
// authoritative transaction detail. Every webhook path goes through here;
// nothing embedded in the inbound payload is ever trusted.
func (c *PagSeguroClient) FetchNotification(ctx context.Context, notificationCode string) (*TransactionDetail, error) {
	notificationCode = strings.TrimSpace(notificationCode)
	if notificationCode == "" {
		return nil, errors.New("notification code is required")
	}
	return c.fetchDetail(ctx, "/v2/transactions/notifications/"+url.PathEscape(notificationCode))
}

func (c *PagSeguroClient) CancelTransaction(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("transaction code is required")
	}

	endpoint := c.cfg.BaseURL + "/v2/transactions/" + url.PathEscape(code) + "/cancel?" + c.credentials().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway cancel failed: code=%s status=%d body=%s", code, resp.StatusCode, string(body))
	}

	return nil
}

func (c *PagSeguroClient) createTransaction(ctx context.Context, method string, input *CreateInput, extra url.Values) (*CreateOutput, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("paymentMethod", method)
	values.Set("reference", input.Reference)
	values.Set("currency", "BRL")
	values.Set("sender[name]", input.Payer.Name)
	values.Set("sender[email]", input.Payer.Email)
	values.Set("sender[document]", input.Payer.Document)
	if strings.TrimSpace(input.Payer.Phone) != "" {
		values.Set("sender[phone]", input.Payer.Phone)
	}
	for i, item := range input.Items {
		prefix := "items[" + strconv.Itoa(i) + "]"
		values.Set(prefix+"[id]", item.ID)
		values.Set(prefix+"[description]", item.Description)
		values.Set(prefix+"[amount]", strconv.FormatInt(item.AmountCents, 10))
		values.Set(prefix+"[quantity]", strconv.FormatInt(int64(item.Quantity), 10))
	}
	if strings.TrimSpace(c.cfg.NotificationURL) != "" {
		values.Set("notificationURL", c.cfg.NotificationURL)
	}
	for key, vals := range extra {
		for _, v := range vals {
			values.Set(key, v)
		}
	}

	endpoint := c.cfg.BaseURL + "/v2/transactions?" + c.credentials().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if declined := decodeBusinessError(resp.StatusCode, body); declined != nil {
		return &CreateOutput{Declined: declined}, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Code        string `json:"code"`
		Status      int32  `json:"status"`
		PaymentLink string `json:"paymentLink"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gateway create response malformed: %w", err)
	}
	if strings.TrimSpace(payload.Code) == "" {
		return nil, errors.New("gateway create response is missing the transaction code")
	}

	return &CreateOutput{
		TransactionCode: strings.TrimSpace(payload.Code),
		Status:          payload.Status,
		PaymentURL:      strings.TrimSpace(payload.PaymentLink),
	}, nil
}

func (c *PagSeguroClient) fetchDetail(ctx context.Context, path string) (*TransactionDetail, error) {
	endpoint := c.cfg.BaseURL + path + "?" + c.credentials().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway detail fetch failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Code          string `json:"code"`
		Status        int32  `json:"status"`
		Reference     string `json:"reference"`
		GrossAmount   string `json:"grossAmount"`
		NetAmount     string `json:"netAmount"`
		PaymentMethod struct {
			Type string `json:"type"`
		} `json:"paymentMethod"`
		Pix *struct {
			Payload string `json:"payload"`
		} `json:"pix"`
		PaymentLink string `json:"paymentLink"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gateway detail response malformed: %w", err)
	}
	if strings.TrimSpace(payload.Code) == "" {
		return nil, errors.New("gateway detail response is missing the transaction code")
	}

	gross, err := parseDetailAmount(payload.GrossAmount)
	if err != nil {
		return nil, err
	}
	net, err := parseDetailAmount(payload.NetAmount)
	if err != nil {
		return nil, err
	}

	detail := &TransactionDetail{
		Code:             strings.TrimSpace(payload.Code),
		Status:           payload.Status,
		StatusText:       StatusText(payload.Status),
		Reference:        strings.TrimSpace(payload.Reference),
		PaymentMethod:    parseMethodType(payload.PaymentMethod.Type),
		GrossAmountCents: gross,
		NetAmountCents:   net,
	}
	if payload.Pix != nil && strings.TrimSpace(payload.Pix.Payload) != "" {
		pix := strings.TrimSpace(payload.Pix.Payload)
		detail.PixPayload = &pix
	}
	if link := strings.TrimSpace(payload.PaymentLink); link != "" && detail.PaymentMethod == entity.PaymentMethodVoucher {
		detail.VoucherURL = &link
	}

	return detail, nil
}

func (c *PagSeguroClient) credentials() url.Values {
	values := url.Values{}
	values.Set("email", c.cfg.Email)
	values.Set("token", c.cfg.Token)
	return values
}

func validateCreateInput(input *CreateInput) error {
	if input == nil {
		return errors.New("create input is required")
	}
	if strings.TrimSpace(input.Reference) == "" {
		return errors.New("reference is required")
	}
	if strings.TrimSpace(input.Payer.Name) == "" {
		return errors.New("payer name is required")
	}
	if strings.TrimSpace(input.Payer.Email) == "" {
		return errors.New("payer email is required")
	}
	if strings.TrimSpace(input.Payer.Document) == "" {
		return errors.New("payer document is required")
	}
	if len(input.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range input.Items {
		if item.AmountCents <= 0 {
			return errors.New("item amount must be > 0")
		}
		if item.Quantity <= 0 {
			return errors.New("item quantity must be > 0")
		}
	}
	return nil
}

func decodeBusinessError(statusCode int, body []byte) *BusinessError {
	if statusCode != http.StatusBadRequest && statusCode != http.StatusUnprocessableEntity {
		return nil
	}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	if strings.TrimSpace(payload.Error.Code) == "" && strings.TrimSpace(payload.Error.Message) == "" {
		return nil
	}

	return &BusinessError{
		Code:    strings.TrimSpace(payload.Error.Code),
		Message: strings.TrimSpace(payload.Error.Message),
	}
}

func parseDetailAmount(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	cents, err := types.ParseMajorAmount(value)
	if err != nil {
		return 0, fmt.Errorf("gateway amount %q: %w", value, err)
	}
	return cents, nil
}

func parseMethodType(raw string) int32 {
	switch strings.TrimSpace(raw) {
	case methodPix:
		return entity.PaymentMethodInstantTransfer
	case methodCreditCard:
		return entity.PaymentMethodCard
	case methodBoleto:
		return entity.PaymentMethodVoucher
	default:
		return 0
	}
}

func totalAmountCents(items []Item) int64 {
	var total int64
	for _, item := range items {
		total += item.AmountCents * int64(item.Quantity)
	}
	return total
}

// installmentAmountCents splits the total across installments with ceiling
// division so the transmitted plan never sums below the charged total.
func installmentAmountCents(totalCents int64, installments int32) int64 {
	if installments <= 1 {
		return totalCents
	}
	n := int64(installments)
	return (totalCents + n - 1) / n
}
