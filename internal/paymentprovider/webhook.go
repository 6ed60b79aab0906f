package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature подпись вебхука отсутствует, не совпадает или устарела.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureTolerance допустимый возраст подписи.
const SignatureTolerance = 5 * time.Minute

// Sign формирует заголовок подписи в формате "t=<unix>,v1=<hex>".
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + computeSignature(ts, payload, secret)
}

// ParseEvent проверяет подпись и разбирает событие. С пустым секретом
// любое событие отклоняется.
func ParseEvent(payload []byte, header, secret string, now time.Time) (Event, error) {
	const op = "paymentprovider.ParseEvent"

	if err := verifySignature(payload, header, secret, now); err != nil {
		return Event{}, fmt.Errorf("%s: %w", op, err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}

func verifySignature(payload []byte, header, secret string, now time.Time) error {
	if secret == "" {
		return ErrInvalidSignature
	}

	var ts string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if ts == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if age := now.Sub(time.Unix(unix, 0)); age > SignatureTolerance || age < -SignatureTolerance {
		return ErrInvalidSignature
	}

	expected := computeSignature(ts, payload, secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(ts string, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
