package domain

// Entity names used by the audit trail.
const (
	EntityCheck             = "InventoryCheck"
	EntityCheckItem         = "InventoryCheckItem"
	EntityCheckComment      = "InventoryCheckComment"
	EntityAdjustment        = "InventoryAdjustment"
	EntityAdjustmentItem    = "InventoryAdjustmentItem"
	EntityAdjustmentComment = "InventoryAdjustmentComment"
)
