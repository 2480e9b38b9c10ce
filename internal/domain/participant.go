package domain

// Participant — логическая личность в комнате. ID меняется при реконнекте,
// Token и DisplayName стабильны на всё время жизни участника.
type Participant struct {
	ID          string // текущий connection id (volatile)
	Token       string // серверный credential для реконнекта
	DisplayName string
}

// SenderRef is a by-value snapshot of a participant at the moment of send.
// History entries hold SenderRef, never a live *Participant, so later
// rebinds or departures cannot rewrite what was already shown.
type SenderRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func (p *Participant) Ref() SenderRef {
	return SenderRef{ID: p.ID, DisplayName: p.DisplayName}
}

// DeriveDisplayName выводит имя из connection id (короткий префикс).
func DeriveDisplayName(connID string) string {
	if len(connID) > 5 {
		return connID[:5]
	}
	return connID
}
