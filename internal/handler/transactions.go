package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

var (
	defaultMinDeposit = decimal.NewFromInt(5)
	defaultMaxDeposit = decimal.NewFromInt(10000)
)

// TransactionHandler serves the balance ledger.
type TransactionHandler struct {
	Ledger       LedgerPoster
	Transactions TransactionReader
	Settings     SettingStore
	Log          *logrus.Logger
}

func NewTransactionHandler(ledger LedgerPoster, txs TransactionReader, settings SettingStore, log *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{Ledger: ledger, Transactions: txs, Settings: settings, Log: log}
}

type depositReq struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"max=50"`
}

type adjustReq struct {
	UserID      uint64          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description" validate:"max=255"`
}

// List returns the caller's own ledger rows, newest first.
func (h *TransactionHandler) List(c echo.Context) error {
	userID, _ := caller(c)
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, total, err := h.Transactions.ListByUser(ctx, repository.TransactionFilter{
		UserID: userID,
		Type:   c.QueryParam("type"),
		Page:   page,
	})
	if err != nil {
		return serverError(c, h.Log, err, "list transactions")
	}
	return ok(c, http.StatusOK, echo.Map{"transactions": rows, "pagination": page.Paginate(total)})
}

// Deposit credits the caller within the configured deposit bounds.
func (h *TransactionHandler) Deposit(c echo.Context) error {
	var req depositReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return fail(c, http.StatusBadRequest, "Invalid amount")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	minDep, err := h.Settings.Number(ctx, "min_deposit", defaultMinDeposit)
	if err != nil {
		return serverError(c, h.Log, err, "deposit")
	}
	maxDep, err := h.Settings.Number(ctx, "max_deposit", defaultMaxDeposit)
	if err != nil {
		return serverError(c, h.Log, err, "deposit")
	}
	if req.Amount.LessThan(minDep) || req.Amount.GreaterThan(maxDep) {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Amount must be between %s and %s", minDep, maxDep))
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "manual"
	}
	userID, _ := caller(c)
	t, err := h.Ledger.Post(ctx, service.Entry{
		UserID:      userID,
		Type:        model.TxDeposit,
		Amount:      req.Amount,
		Description: "Deposit via " + method,
		CreatedBy:   &userID,
	})
	if err != nil {
		return serverError(c, h.Log, err, "deposit")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Funds added successfully", "balance": t.BalanceAfter})
}

// Adjust lets an admin add to or remove from any balance.
func (h *TransactionHandler) Adjust(c echo.Context) error {
	var req adjustReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.UserID == 0 || req.Amount.IsZero() || req.Type == "" {
		return fail(c, http.StatusBadRequest, "User ID, amount, and type are required")
	}
	typ, _ := model.ParseTransactionType(req.Type)
	if typ != model.TxAdminAdd && typ != model.TxAdminRemove {
		return fail(c, http.StatusBadRequest, "Invalid transaction type")
	}
	if !req.Amount.IsPositive() {
		return fail(c, http.StatusBadRequest, "Invalid amount")
	}

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "Balance adjusted by admin"
	}
	adminID, _ := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Ledger.Post(ctx, service.Entry{
		UserID:      req.UserID,
		Type:        typ,
		Amount:      req.Amount,
		Description: desc,
		CreatedBy:   &adminID,
	})
	var ibe *service.InsufficientBalanceError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.As(err, &ibe):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success":   false,
			"message":   "Insufficient balance",
			"required":  ibe.Required,
			"available": ibe.Available,
		})
	case err != nil:
		return serverError(c, h.Log, err, "adjust balance")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Balance adjusted successfully", "new_balance": t.BalanceAfter})
}
