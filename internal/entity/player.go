package entity

const (
	StatusPlayer = "player"
	StatusViewer = "viewer"
)

type Player struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Symbol   string `json:"symbol"`
	ClientID string `json:"client_id"`
}

func (that *Player) IsPlayer() bool {
	return that.Status == StatusPlayer
}

func (that *Player) IsViewer() bool {
	return that.Status == StatusViewer
}
