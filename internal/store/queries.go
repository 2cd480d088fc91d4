package store

// Stored procedure names for session-state operations.
// The query text is a bare procedure name: the driver invokes it as an
// RPC with the bound named parameters, including OUTPUT bindings.
const (
	procGetStateItem            = "dbo.GetStateItem"
	procGetStateItemExclusive   = "dbo.GetStateItemExclusive"
	procReleaseItemExclusive    = "dbo.ReleaseItemExclusive"
	procInsertStateItem         = "dbo.InsertStateItem"
	procInsertUninitializedItem = "dbo.InsertUninitializedItem"
	procUpdateStateItem         = "dbo.UpdateStateItem"
	procRemoveStateItem         = "dbo.RemoveStateItem"
	procResetItemTimeout        = "dbo.ResetItemTimeout"
	procDeleteExpiredSessions   = "dbo.DeleteExpiredSessions"
)

// queryPing is a connectivity probe that exercises the full
// open -> execute path without touching session rows.
const queryPing = "SELECT 1"
