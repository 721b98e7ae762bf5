package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"merchant-banklink/internal/banklink"
	"merchant-banklink/internal/domain"
	"merchant-banklink/internal/infra/logging"
	"merchant-banklink/internal/usecase"
)

// handlePay signs an outbound payment packet and answers with a page that
// auto-submits the hidden form to the bank's gateway.
func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	bankID := chi.URLParam(r, "bank")
	ctx := logging.WithBankID(r.Context(), bankID)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	order := usecase.PaymentOrder{
		Amount:    r.PostFormValue("amount"),
		Currency:  r.PostFormValue("currency"),
		Reference: r.PostFormValue("reference"),
		Message:   r.PostFormValue("message"),
	}

	ex, form, err := s.uc.Initiate(ctx, bankID, order)
	if err != nil {
		s.writeInitiateError(ctx, w, bankID, err)
		return
	}

	bank := s.banks[bankID]
	logging.With(logging.WithExchangeID(ctx, ex.ID), s.log).Info().Msg("payment initiated")
	s.writeGatewayForm(w, bank, form)
}

// handleAuth signs an authentication request carrying a fresh nonce.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	bankID := chi.URLParam(r, "bank")
	ctx := logging.WithBankID(r.Context(), bankID)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	ex, form, err := s.uc.InitiateAuth(ctx, bankID, r.PostFormValue("rid"))
	if err != nil {
		s.writeInitiateError(ctx, w, bankID, err)
		return
	}

	bank := s.banks[bankID]
	logging.With(logging.WithExchangeID(ctx, ex.ID), s.log).Info().Msg("authentication initiated")
	s.writeGatewayForm(w, bank, form)
}

// handleReturn receives the bank's response. Banks post form fields or
// redirect the shopper back with query parameters; both arrive here.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	bankID := chi.URLParam(r, "bank")
	ctx := logging.WithBankID(r.Context(), bankID)
	log := logging.With(ctx, s.log)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	ex, verified, err := s.uc.HandleReturn(ctx, bankID, r.Form, "")
	if err != nil {
		if errors.Is(err, domain.ErrUnknownBank) {
			http.Error(w, "unknown bank", http.StatusNotFound)
			return
		}
		var verr *banklink.VerificationError
		if errors.As(err, &verr) {
			log.Error().Err(err).Msg("verification fault")
			http.Error(w, "verification fault", http.StatusBadGateway)
			return
		}
		log.Error().Err(err).Msg("return handling failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !verified {
		log.Warn().Str("exchange_id", ex.ID).Msg("packet rejected")
		http.Error(w, "rejected", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"exchange_id":%q,"status":%q}`, ex.ID, ex.Status)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	bankID := chi.URLParam(r, "bank")
	s.log.Info().Str("bank", bankID).Msg("payment cancelled by shopper")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "cancelled")
}

func (s *Server) writeInitiateError(ctx context.Context, w http.ResponseWriter, bankID string, err error) {
	if errors.Is(err, domain.ErrUnknownBank) {
		http.Error(w, "unknown bank", http.StatusNotFound)
		return
	}
	var iperr *banklink.InvalidParameterError
	if errors.As(err, &iperr) {
		http.Error(w, iperr.Error(), http.StatusBadRequest)
		return
	}
	logging.With(ctx, s.log).Error().Err(err).Str("bank", bankID).Msg("initiate failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) writeGatewayForm(w http.ResponseWriter, bank *usecase.Bank, fields string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><body onload="document.forms[0].submit()">
<form method="POST" action="%s">
%s <input type="submit" value="Continue to bank"/>
</form>
</body></html>
`, html.EscapeString(bank.GatewayURL), fields)
}
