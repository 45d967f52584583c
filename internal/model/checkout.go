package model

// CheckoutSession 建立結帳後回傳給前端的資訊
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CheckoutRequest 前端送出的結帳內容；titleName 與 price 僅供比對，金額以資料庫為準
type CheckoutRequest struct {
	TitleID   string `json:"titleId" binding:"required"`
	TitleName string `json:"titleName"`
	Price     *int64 `json:"price"`
}

// CheckoutSessionParams 交給 payment gateway 的參數
type CheckoutSessionParams struct {
	TitleID     string
	UserID      string
	ProductName string
	Description string
	UnitAmount  int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CheckoutCompletion 驗證過簽章的 checkout.session.completed 事件
type CheckoutCompletion struct {
	EventID         string `json:"event_id"`
	SessionID       string `json:"session_id"`
	TitleID         string `json:"title_id"`
	UserID          string `json:"user_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	CustomerID      string `json:"customer_id,omitempty"`
}

// Validate metadata 缺少 titleId 或 userId 時無法授權
func (c *CheckoutCompletion) Validate() bool {
	return c.SessionID != "" && c.TitleID != "" && c.UserID != ""
}

// GrantOutcome 處理完成事件的結果
type GrantOutcome string

const (
	GrantOutcomeGranted  GrantOutcome = "granted"
	GrantOutcomeRefunded GrantOutcome = "refunded"
)
