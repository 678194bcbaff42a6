package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new/jwtmiddleware"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
)

// PurchaseRequest без верхней границы: слишком большое количество
// отклоняется складом как нехватка остатка.
type PurchaseRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type PurchaseResponse struct {
	Message string           `json:"message"`
	Receipt *service.Receipt `json:"receipt"`
}

// PurchaseHandler обрабатывает POST /api/sweets/{id}/purchase
func PurchaseHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchaseHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, ok := sweetIDParam(w, r, logger)
		if !ok {
			return
		}

		var req PurchaseRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		// разрыв соединения клиентом не должен прерывать уже начатую покупку
		receipt, err := inventory.Purchase(context.WithoutCancel(r.Context()), identity, id, req.Quantity)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, PurchaseResponse{
			Message: fmt.Sprintf("Purchased %d x %s", req.Quantity, receipt.SweetName),
			Receipt: receipt,
		})
	}
}
