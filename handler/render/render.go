package render

import (
	"encoding/json"
	"net/http"

	"safeprice/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		logrus.WithError(err).Errorln("render json")
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.WithError(err).Errorln("render text")
	}
}

// Error write error, core error codes are translated to twirp errors
func Error(w http.ResponseWriter, err error) {
	twerr := codes.FromError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(twirp.ServerHTTPStatusFromErrorCode(twerr.Code()))

	resp := errorResponse{
		Code: codes.Get(twerr),
		Msg:  twerr.Msg(),
	}

	if ResponseErrorMessageAsHint || twerr.Code() != twirp.Internal {
		resp.Hint = err.Error()
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Errorln("render error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, codes.With(twirp.InvalidArgumentError("request", err.Error()), codes.InvalidArguments))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()))
}
