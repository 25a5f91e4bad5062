package entities

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidField       = errors.New("invalid field")
	ErrAmountBelowMinimum = errors.New("amount below pix minimum")
	ErrIncompleteResponse = errors.New("provider response has no payment code")
	ErrTimedOut           = errors.New("pix code not generated in time")
	ErrRateLimited        = errors.New("too many payment attempts")
	ErrTransactionFailed  = errors.New("transaction failed at provider")
	ErrMissingTransaction = errors.New("provider returned no transaction id")
	ErrAttemptAbandoned   = errors.New("payment attempt abandoned")
)

// ValidationError names the first offending field using its dotted JSON path
// (e.g. "customer.address.zipCode", "items[0].title").
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AuthError is returned when the provider refuses the credentials.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider authentication failed status=%d", e.StatusCode)
}

// GatewayError is a non-successful provider answer, or the last failure once
// retries and fallback are exhausted.
type GatewayError struct {
	StatusCode      int
	ProviderDetails string
	Err             error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("payment gateway error status=%d", e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Retryable reports whether the outer retry loop may try again.
func (e *GatewayError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// TransientNetworkError wraps transport failures (dial, timeout, reset).
type TransientNetworkError struct {
	Err error
}

func (e *TransientNetworkError) Error() string {
	return "transient network error: " + e.Err.Error()
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// RateLimitedError matches ErrRateLimited and tells when to try again.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%v, retry in %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// UserMessage maps any terminal checkout error to the single message shown to
// the payer.
func UserMessage(err error) string {
	var (
		ve   *ValidationError
		ae   *AuthError
		ge   *GatewayError
		rl   *RateLimitedError
		tErr *TransientNetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAmountBelowMinimum):
		return "O valor mínimo para pagamento via PIX é de R$ 1,49"
	case errors.As(err, &ve):
		return "Verifique os dados informados: " + ve.Field
	case errors.As(err, &rl):
		minutes := int(rl.RetryAfter.Round(time.Minute) / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("Muitas tentativas. Aguarde %d minuto(s) antes de tentar novamente.", minutes)
	case errors.Is(err, ErrTimedOut):
		return "PIX não foi gerado em tempo hábil. Tente novamente."
	case errors.Is(err, ErrTransactionFailed):
		return "A transação foi recusada pela instituição de pagamento."
	case errors.Is(err, ErrIncompleteResponse), errors.Is(err, ErrMissingTransaction):
		return "Não foi possível obter os dados do PIX. Tente novamente."
	case errors.Is(err, ErrAttemptAbandoned):
		return "Pagamento cancelado."
	case errors.As(err, &ae):
		return "Erro na autenticação com o provedor de pagamento."
	case errors.As(err, &ge):
		if ge.StatusCode == http.StatusBadRequest {
			return "Dados de pagamento recusados pelo provedor."
		}
		return "Serviço de pagamento indisponível. Tente novamente."
	case errors.As(err, &tErr):
		return "Falha de comunicação com o provedor de pagamento. Tente novamente."
	default:
		return "Erro ao gerar PIX"
	}
}
