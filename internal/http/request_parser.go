package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"wellness/internal/core"
)

const (
	maxBodyBytes          = 64 << 10
	msgInvalidRequestBody = "invalid request body"
)

// Request payloads. Pointer fields distinguish an absent value from zero.
type (
	expenseRequest struct {
		Title    string   `json:"title"`
		Amount   *float64 `json:"amount"`
		Category string   `json:"category"`
	}

	budgetRequest struct {
		MonthlyBudget *float64 `json:"monthly_budget"`
	}

	mentalRequest struct {
		MoodRating        *int64   `json:"mood_rating"`
		MeditationMinutes *int64   `json:"meditation_minutes"`
		SleepHours        *float64 `json:"sleep_hours"`
		Notes             *string  `json:"notes"`
	}

	intellectualRequest struct {
		LearningGoal       *string `json:"learning_goal"`
		ReadingTime        *int64  `json:"reading_time"`
		CurrentBook        *string `json:"current_book"`
		ProgressPercentage *int64  `json:"progress_percentage"`
	}
)

// decodeJSON reads a single JSON object from the body into dst. An empty
// body decodes as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && strings.HasPrefix(ute.Value, "number") && isIntKind(ute.Type) {
			return &core.ValidationError{Field: ute.Field, Message: ute.Field + " must be a whole number"}
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("decode request body: trailing data")
	}
	return nil
}

func isIntKind(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// writeDecodeError answers a body that could not be decoded. Fractional
// values for integer columns get a field message, anything else the
// generic one.
func writeDecodeError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		BadRequestError(ve.Message).Write(w)
		return
	}
	BadRequestError(msgInvalidRequestBody).Write(w)
}

// sanitizeInput drops control characters other than tab, newline and
// carriage return. Everything else, surrounding whitespace included, is
// stored as sent.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
