package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pix_checkout/internal/domain/entities"
)

var errMalformedResponse = errors.New("provider response is not a json object")

// fieldExtractor pulls one logical field out of a decoded provider body.
type fieldExtractor func(body map[string]any) (string, bool)

// Provider versions disagree on field names, so each logical field is probed
// through an ordered candidate list and the first non-empty value wins.
var (
	transactionIDCandidates = []fieldExtractor{
		jsonPath("idTransaction"),
		jsonPath("id"),
		jsonPath("transaction_id"),
		jsonPath("client_id"),
		jsonPath("data.idTransaction"),
		jsonPath("data.id"),
	}
	paymentCodeCandidates = []fieldExtractor{
		jsonPath("paymentCode"),
		jsonPath("pix_code"),
		jsonPath("pixCode"),
		jsonPath("qrCode"),
		jsonPath("qr_code"),
		jsonPath("data.paymentCode"),
		jsonPath("point_of_interaction.transaction_data.qr_code"),
	}
	paymentCodeImageCandidates = []fieldExtractor{
		jsonPath("paymentCodeBase64"),
		jsonPath("qr_code_base64"),
		jsonPath("qrCodeBase64"),
		jsonPath("data.paymentCodeBase64"),
		jsonPath("point_of_interaction.transaction_data.qr_code_base64"),
	}
	statusCandidates = []fieldExtractor{
		jsonPath("status_transaction"),
		jsonPath("status"),
		jsonPath("data.status_transaction"),
		jsonPath("data.status"),
	}
	messageCandidates = []fieldExtractor{
		jsonPath("message"),
		jsonPath("data.message"),
		jsonPath("status_detail"),
	}
)

// jsonPath resolves a dotted path of object keys. Strings and numbers count
// as present; empty strings do not.
func jsonPath(path string) fieldExtractor {
	keys := strings.Split(path, ".")
	return func(body map[string]any) (string, bool) {
		var cur any = body
		for _, k := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = obj[k]; !ok {
				return "", false
			}
		}
		switch v := cur.(type) {
		case string:
			v = strings.TrimSpace(v)
			return v, v != ""
		case json.Number:
			return v.String(), true
		default:
			return "", false
		}
	}
}

func firstPresent(body map[string]any, candidates []fieldExtractor) string {
	for _, extract := range candidates {
		if v, ok := extract(body); ok {
			return v
		}
	}
	return ""
}

// NormalizeTransaction turns any known provider body into a TransactionResult.
//
// When neither the payment code nor its image is present the result (with
// whatever id was found) is returned together with ErrIncompleteResponse.
func NormalizeTransaction(raw []byte, provider string) (entities.TransactionResult, error) {
	body, err := decodeObject(raw)
	if err != nil {
		return entities.TransactionResult{}, err
	}

	res := entities.TransactionResult{
		ID:               firstPresent(body, transactionIDCandidates),
		Status:           mapProviderStatus(firstPresent(body, statusCandidates)),
		PaymentCode:      firstPresent(body, paymentCodeCandidates),
		PaymentCodeImage: firstPresent(body, paymentCodeImageCandidates),
		Message:          firstPresent(body, messageCandidates),
		Provider:         provider,
		Raw:              json.RawMessage(raw),
	}
	res = res.Settle()

	if res.PaymentCode == "" && res.PaymentCodeImage == "" {
		return res, entities.ErrIncompleteResponse
	}
	return res, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if body == nil {
		return nil, errMalformedResponse
	}
	return body, nil
}

func mapProviderStatus(s string) entities.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "paid", "paid_out", "approved", "success", "succeeded":
		return entities.TransactionStatusCompleted
	case "waiting_for_approval", "waiting_approval", "waiting_payment", "waiting":
		return entities.TransactionStatusWaitingApproval
	case "failed", "error", "canceled", "cancelled", "refused", "rejected", "expired", "refunded", "chargeback":
		return entities.TransactionStatusFailed
	default:
		return entities.TransactionStatusPending
	}
}
