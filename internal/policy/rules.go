package policy

import "github.com/natalia-epifanova/course-marketplace/internal/models"

func registerDefaults(e *Engine) {
	for _, kind := range []Kind{KindCourse, KindLesson} {
		e.Register(kind, ActionCreate, contentCreate)
		e.Register(kind, ActionList, authenticated)
		e.Register(kind, ActionRead, moderatorOrOwner)
		e.Register(kind, ActionUpdate, moderatorOrOwner)
		e.Register(kind, ActionDelete, contentDelete)
	}

	e.Register(KindSubscription, ActionCreate, authenticated)

	e.Register(KindPayment, ActionCreate, authenticated)
	e.Register(KindPayment, ActionList, authenticated)
	e.Register(KindPayment, ActionRead, moderatorOrOwner)
	e.Register(KindPayment, ActionUpdate, owner)
	e.Register(KindPayment, ActionDelete, owner)

	e.Register(KindProfile, ActionRead, authenticated)
	e.Register(KindProfile, ActionUpdate, owner)
	e.Register(KindProfile, ActionDelete, owner)

	e.Register(KindUsers, ActionList, admin)
	e.Register(KindUsers, ActionUpdate, admin)
}

func authenticated(a Actor, _ Resource) bool {
	return IsAuthenticated(a)
}

func admin(a Actor, _ Resource) bool {
	return IsAdmin(a)
}

func owner(a Actor, r Resource) bool {
	return IsOwner(a, r)
}

// Модераторы только проверяют контент и не создают его.
func contentCreate(a Actor, _ Resource) bool {
	return IsAuthenticated(a) && !IsModerator(a)
}

func moderatorOrOwner(a Actor, r Resource) bool {
	return IsModerator(a) || IsOwner(a, r)
}

// Удалять может владелец или любой не-модератор.
// NOTE: не-модератор может удалить чужой курс или урок. Правило сохранено как есть,
// ужесточение до владельца требует решения по продукту.
func contentDelete(a Actor, r Resource) bool {
	return IsAuthenticated(a) && (IsOwner(a, r) || !IsModerator(a))
}

// ForKind ресурс уровня коллекции.
func ForKind(kind Kind) Resource {
	return Resource{Kind: kind}
}

// ForCourse ресурс для курса.
func ForCourse(c models.Course) Resource {
	return Resource{Kind: KindCourse, OwnerID: c.OwnerID}
}

// ForLesson ресурс для урока.
func ForLesson(l models.Lesson) Resource {
	return Resource{Kind: KindLesson, OwnerID: l.OwnerID}
}

// ForPayment ресурс для платежа.
func ForPayment(p models.Payment) Resource {
	owner := p.UserID
	return Resource{Kind: KindPayment, OwnerID: &owner}
}

// ForProfile ресурс для профиля пользователя с указанным id.
func ForProfile(userID int64) Resource {
	return Resource{Kind: KindProfile, OwnerID: &userID}
}
