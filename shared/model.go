package shared

// ClickTimeLayout is the display format stored with every click event.
const ClickTimeLayout = "2006-01-02 15:04"

// ClickMessage is the queue payload emitted for every resolved redirect.
// Code carries the lowercase vanity so the analytic side can partition by it.
type ClickMessage struct {
	Id            string `json:"id"`
	Code          string `json:"code"`
	ClickDatetime string `json:"clickDatetime"`
}
