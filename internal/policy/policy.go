// Package policy реализует движок правил доступа маркетплейса.
//
// Правило это чистая функция от субъекта и ресурса. Правила регистрируются
// в Engine по паре (вид ресурса, действие); для незарегистрированной пары
// доступ запрещен.
package policy

import (
	"errors"
	"fmt"

	"github.com/natalia-epifanova/course-marketplace/internal/models"
)

// ErrForbidden возвращается, когда правило запрещает действие.
var ErrForbidden = errors.New("permission denied")

// Kind вид ресурса.
type Kind string

const (
	KindCourse       Kind = "course"
	KindLesson       Kind = "lesson"
	KindSubscription Kind = "subscription"
	KindPayment      Kind = "payment"
	KindProfile      Kind = "profile"
	KindUsers        Kind = "users"
)

// Action действие над ресурсом.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor субъект запроса. Нулевое значение соответствует анонимному пользователю.
type Actor struct {
	UserID        int64
	Authenticated bool
	Moderator     bool
	Admin         bool
}

// ActorFromUser строит субъекта по учетной записи.
func ActorFromUser(u models.User) Actor {
	return Actor{
		UserID:        u.ID,
		Authenticated: true,
		Moderator:     u.IsModerator,
		Admin:         u.IsAdmin,
	}
}

// Resource то, над чем выполняется действие. OwnerID nil у действий уровня
// коллекции (create, list) и у ресурсов, чей владелец удален.
type Resource struct {
	Kind    Kind
	OwnerID *int64
}

// Rule решает, разрешено ли действие.
type Rule func(a Actor, r Resource) bool

type ruleKey struct {
	kind   Kind
	action Action
}

// Engine хранит правила доступа.
type Engine struct {
	rules map[ruleKey]Rule
}

// NewEngine возвращает движок с правилами маркетплейса.
func NewEngine() *Engine {
	e := &Engine{rules: make(map[ruleKey]Rule)}
	registerDefaults(e)
	return e
}

// Register добавляет или заменяет правило.
func (e *Engine) Register(kind Kind, action Action, rule Rule) {
	e.rules[ruleKey{kind: kind, action: action}] = rule
}

// Allowed сообщает, разрешено ли действие.
func (e *Engine) Allowed(a Actor, action Action, r Resource) bool {
	rule, ok := e.rules[ruleKey{kind: r.Kind, action: action}]
	if !ok {
		return false
	}
	return rule(a, r)
}

// Authorize возвращает ошибку, оборачивающую ErrForbidden, если действие запрещено.
func (e *Engine) Authorize(a Actor, action Action, r Resource) error {
	if e.Allowed(a, action, r) {
		return nil
	}
	return fmt.Errorf("%s %s: %w", action, r.Kind, ErrForbidden)
}

// IsAuthenticated истинно для любого вошедшего пользователя.
func IsAuthenticated(a Actor) bool {
	return a.Authenticated
}

// IsModerator истинно для участника группы модераторов.
func IsModerator(a Actor) bool {
	return a.Authenticated && a.Moderator
}

// IsAdmin истинно для администратора.
func IsAdmin(a Actor) bool {
	return a.Authenticated && a.Admin
}

// IsOwner истинно, если субъект владеет ресурсом.
func IsOwner(a Actor, r Resource) bool {
	return a.Authenticated && r.OwnerID != nil && *r.OwnerID == a.UserID
}
