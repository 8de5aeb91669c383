package models

// Capability — право, выданное внешним сервисом авторизации.
type Capability string

const (
	// CapFinanceManage разрешает подтверждать, отклонять и вносить платежи вручную.
	CapFinanceManage Capability = "finance:manage"
	// CapLedgerManage разрешает вести свободный учёт доходов и расходов.
	CapLedgerManage Capability = "ledger:manage"
	// CapReportsView разрешает смотреть сводные отчёты.
	CapReportsView Capability = "reports:view"
)

// Actor — уже аутентифицированное действующее лицо.
type Actor struct {
	ID           string
	Role         string
	Capabilities []Capability
}

// Can сообщает, есть ли у действующего лица возможность.
func (a Actor) Can(c Capability) bool {
	for _, v := range a.Capabilities {
		if v == c {
			return true
		}
	}
	return false
}

// CapabilitiesForRole сопоставляет роль из токена набору возможностей.
func CapabilitiesForRole(role string) []Capability {
	switch role {
	case "admin":
		return []Capability{CapFinanceManage, CapLedgerManage, CapReportsView}
	case "treasurer":
		return []Capability{CapFinanceManage, CapLedgerManage, CapReportsView}
	case "committee":
		return []Capability{CapReportsView}
	default:
		return nil
	}
}
