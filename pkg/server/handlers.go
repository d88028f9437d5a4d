package server

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/cache"
	"github.com/getzep/nlp-annotator-api/pkg/controller"
	"github.com/getzep/nlp-annotator-api/pkg/server/handlertools"
)

var log = internal.GetLogger()

// GetAnnotatorsHandler returns a handler for GET requests to /api/v1/annotators
func GetAnnotatorsHandler(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handlertools.EncodeJSON(w, ctrl.Names()); err != nil {
			handlertools.RenderProblem(w, err)
		}
	}
}

// RunAnnotatorHandler returns a handler for POST requests to /api/v1/annotators/{annotator}.
// Requests carrying a transaction id are answered from the cache when possible.
func RunAnnotatorHandler(ctrl *controller.Controller, cacheLayer *cache.Layer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "annotator")
		annotator, err := ctrl.Resolve(name)
		if err != nil {
			handlertools.RenderProblem(w, err)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			handlertools.RenderProblem(w, err)
			return
		}

		timing := cache.ParseTimingParameters(r.Header)
		log.WithFields(logrus.Fields{
			"annotator":      name,
			"request_id":     middleware.GetReqID(r.Context()),
			"transaction_id": timing.TransactionID,
		}).Debug("running annotator")

		response, err := cacheLayer.Do(r.Context(), timing, func(ctx context.Context) ([]byte, error) {
			return ctrl.Run(ctx, annotator, body)
		})
		if err != nil {
			handlertools.RenderProblem(w, err)
			return
		}

		handlertools.WriteJSON(w, response)
	}
}
