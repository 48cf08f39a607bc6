package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// logAction appends an audit row to api_logs with the action name as the
// endpoint. Failures are only logged.
func logAction(ctx context.Context, logs LogStore, log *logrus.Logger, userID uint64, action string, details any) {
	data, err := json.Marshal(details)
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("action details not encoded")
		return
	}
	err = logs.LogAPI(context.WithoutCancel(ctx), repository.APIEntry{
		UserID:      &userID,
		Endpoint:    action,
		Method:      http.MethodPost,
		RequestData: string(data),
		StatusCode:  http.StatusOK,
	})
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("action not logged")
	}
}
