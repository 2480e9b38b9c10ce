package domain

import "time"

// WarningStage отмечает, какие предупреждения о бездействии уже разосланы.
// Монотонно растёт; любое принятое сообщение сбрасывает в WarnNone.
type WarningStage int

const (
	WarnNone WarningStage = iota
	Warned1h
	Warned30m
	Warned10m
)

type Room struct {
	ID           string
	OwnerID      string // connection id текущего владельца; переезжает при реконнекте
	Participants []*Participant
	History      *History
	LastActivity time.Time
	Warning      WarningStage
	CreatedAt    time.Time
}

// ByConnID находит участника по его текущему connection id.
func (r *Room) ByConnID(connID string) *Participant {
	for _, p := range r.Participants {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

// ByToken находит участника по стабильному токену.
func (r *Room) ByToken(token string) *Participant {
	if token == "" {
		return nil
	}
	for _, p := range r.Participants {
		if p.Token == token {
			return p
		}
	}
	return nil
}

// RemoveByConnID удаляет участника, сохраняя порядок вступления.
func (r *Room) RemoveByConnID(connID string) bool {
	for i, p := range r.Participants {
		if p.ID == connID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// Touch фиксирует активность и снимает все стадии предупреждений.
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
	r.Warning = WarnNone
}
