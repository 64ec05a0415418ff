package apiv1

// Pong is the response of GET /ping
type Pong struct {
	Ping string `json:"ping"`
}
