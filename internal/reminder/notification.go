package reminder

import (
	"fmt"

	"fjacquet/expense-manager/internal/models"
)

// Kind tags a notification.
type Kind string

// Notification kinds
const (
	KindUrgent Kind = "urgent"
	KindWarn   Kind = "warn"
	KindOver   Kind = "over"
	KindLoan   Kind = "loan"
)

// Kinds lists every notification kind.
func Kinds() []Kind {
	return []Kind{KindUrgent, KindWarn, KindOver, KindLoan}
}

// Notification is one emitted reminder.
type Notification struct {
	Kind    Kind
	Message string
}

// Listener receives notifications. A Listener registered through a
// SerialDispatcher is never called concurrently with itself.
type Listener func(kind Kind, message string)

func urgentNotification(balance float64) Notification {
	return Notification{Kind: KindUrgent, Message: fmt.Sprintf("balance below urgent threshold: %.2f", balance)}
}

func warnNotification(balance float64) Notification {
	return Notification{Kind: KindWarn, Message: fmt.Sprintf("balance below warning threshold: %.2f", balance)}
}

func overNotification(r models.Record) Notification {
	return Notification{
		Kind:    KindOver,
		Message: fmt.Sprintf("possible overconsumption: %s, amount %.2f", r.Category, r.Amount),
	}
}

func loanNotification(l models.LoanRecord) Notification {
	return Notification{
		Kind:    KindLoan,
		Message: fmt.Sprintf("loan due: %s amount %.2f due %s", l.Name, l.Amount, *l.DueDate),
	}
}
