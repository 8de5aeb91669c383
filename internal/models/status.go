package models

// Status — каноническое состояние оплаты обязательства.
type Status string

const (
	// StatusUnpaid — значение по умолчанию, когда записи за период нет.
	StatusUnpaid Status = "unpaid"
	// StatusPending — участник заявил об оплате, ждёт проверки казначеем.
	StatusPending Status = "pending"
	// StatusPaid — оплата подтверждена.
	StatusPaid Status = "paid"
	// StatusFailed — заявка отклонена, может быть подана повторно.
	StatusFailed Status = "failed"
)

// Statuses возвращает все канонические статусы в порядке жизненного цикла.
func Statuses() []Status {
	return []Status{StatusUnpaid, StatusPending, StatusPaid, StatusFailed}
}

// IsSettled сообщает, закрыт ли период оплатой.
func (s Status) IsSettled() bool {
	return s == StatusPaid
}

// In проверяет, входит ли статус в набор.
func (s Status) In(set ...Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
