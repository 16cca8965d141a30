package inbox

import (
	"fmt"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// Observer notifies one user about progression milestones. It satisfies
// the engine's progress observer interface.
type Observer struct {
	svc    *Service
	userID string
}

// Observer returns a progression observer bound to userID.
func (s *Service) Observer(userID string) *Observer {
	return &Observer{svc: s, userID: userID}
}

func (o *Observer) OnPointsAwarded(domain.PointCategory, int64) {}

func (o *Observer) OnAchievementUnlocked(a domain.Achievement) {
	name := a.DisplayName
	if name == "" {
		name = a.ID
	}
	o.notify(domain.NotifyAchievement, "Achievement unlocked: "+name, a.Description)
}

func (o *Observer) OnLevelUp(previousLevel, newLevel int) {
	o.notify(domain.NotifyLevelUp,
		fmt.Sprintf("Level %d reached", newLevel),
		fmt.Sprintf("You climbed from level %d to level %d.", previousLevel, newLevel))
}

func (o *Observer) OnChallengeResolved(c domain.ChallengeInstance) {
	if c.State != domain.ChallengeCompleted {
		return
	}
	o.notify(domain.NotifyChallengeComplete,
		"Challenge complete: "+c.Name,
		fmt.Sprintf("%d points earned.", c.Granted))
}

func (o *Observer) OnNarrativeProgress(routeInstanceID, waypointID string, progress float64) {
	o.notify(domain.NotifyWaypoint,
		"Waypoint reached: "+waypointID,
		fmt.Sprintf("Route %.0f%% explored.", progress*100))
}

func (o *Observer) notify(typ domain.NotificationType, title, body string) {
	_, err := o.svc.Create(domain.Notification{
		UserID: o.userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		o.svc.log.Warn("notification dropped", "user_id", o.userID, "type", typ, "error", err)
	}
}
