package paymentprovider

import "encoding/json"

// Product товар у провайдера.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price цена товара в минимальных единицах валюты.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Product    string `json:"product"`
}

// CheckoutSession сессия оплаты со ссылкой для покупателя.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// apiError тело ошибки API провайдера.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Типы событий, которые обрабатывает маркетплейс.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// Event уведомление провайдера о смене состояния сессии.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Session извлекает сессию оплаты из события.
func (e Event) Session() (CheckoutSession, error) {
	var s CheckoutSession
	err := json.Unmarshal(e.Data.Object, &s)
	return s, err
}
