package schema

// Table names shared with the repositories.
const (
	UserTableName        = "user"
	PlotTableName        = "userSoil"
	SeedTableName        = "userSeed"
	CropTableName        = "userPlant"
	TheftTableName       = "userSteal"
	SignLogTableName     = "userSignLog"
	SignSummaryTableName = "userSignSummary"
	LegacySoilTableName  = "soil"
)

// LegacySlots is the width of the legacy soil table (soil1..soil30).
const LegacySlots = 30

var UserTable = TableSchema{
	Name: UserTableName,
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "name", Type: "TEXT", Modifiers: "NOT NULL DEFAULT ''"},
		{Name: "exp", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "point", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "soil", Type: "INTEGER", Modifiers: "DEFAULT 3"},
		{Name: "stealing", Type: "TEXT", Modifiers: "DEFAULT ''"},
	},
	PrimaryKey: []string{"uid"},
}

var PlotTable = TableSchema{
	Name: PlotTableName,
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "soilIndex", Type: "INTEGER", Modifiers: "NOT NULL"},
		{Name: "plantName", Type: "TEXT", Modifiers: "DEFAULT ''"},
		{Name: "plantTime", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "matureTime", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "soilLevel", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "wiltStatus", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "fertilizerStatus", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "bugStatus", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "weedStatus", Type: "INTEGER", Modifiers: "DEFAULT 0"},
		{Name: "waterStatus", Type: "INTEGER", Modifiers: "DEFAULT 0"},
	},
	PrimaryKey: []string{"uid", "soilIndex"},
}

// InventoryTable declares a ledger table keyed by (uid, itemColumn).
// Extra columns follow count.
func InventoryTable(name, itemColumn string, extra ...Column) TableSchema {
	cols := []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: itemColumn, Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "count", Type: "INTEGER", Modifiers: "NOT NULL DEFAULT 0"},
	}
	return TableSchema{
		Name:       name,
		Columns:    append(cols, extra...),
		PrimaryKey: []string{"uid", itemColumn},
	}
}

var SeedTable = InventoryTable(SeedTableName, "seed")

var CropTable = InventoryTable(CropTableName, "plant",
	Column{Name: "isLock", Type: "INTEGER", Modifiers: "NOT NULL DEFAULT 0"},
)

var TheftTable = TableSchema{
	Name: TheftTableName,
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "soilIndex", Type: "INTEGER", Modifiers: "NOT NULL"},
		{Name: "stealerUid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "stealCount", Type: "INTEGER", Modifiers: "NOT NULL CHECK (stealCount >= 1)"},
		{Name: "stealTime", Type: "INTEGER", Modifiers: "NOT NULL"},
	},
	PrimaryKey: []string{"uid", "soilIndex", "stealerUid"},
}

var SignLogTable = TableSchema{
	Name: SignLogTableName,
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "signDate", Type: "DATE", Modifiers: "NOT NULL"},
		{Name: "isSupplement", Type: "TINYINT", Modifiers: "NOT NULL DEFAULT 0"},
		{Name: "rewardType", Type: "VARCHAR(20)", Modifiers: "DEFAULT ''"},
		{Name: "createdAt", Type: "DATETIME", Modifiers: "NOT NULL DEFAULT CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"uid", "signDate"},
}

var SignSummaryTable = TableSchema{
	Name: SignSummaryTableName,
	Columns: []Column{
		{Name: "uid", Type: "TEXT", Modifiers: "NOT NULL"},
		{Name: "totalSignDays", Type: "INT", Modifiers: "NOT NULL DEFAULT 0"},
		{Name: "currentMonth", Type: "CHAR(7)", Modifiers: "NOT NULL DEFAULT ''"},
		{Name: "monthSignDays", Type: "INT", Modifiers: "NOT NULL DEFAULT 0"},
		{Name: "lastSignDate", Type: "DATE", Modifiers: "NOT NULL DEFAULT ''"},
		{Name: "continuousDays", Type: "INT", Modifiers: "NOT NULL DEFAULT 0"},
		{Name: "supplementCount", Type: "INT", Modifiers: "NOT NULL DEFAULT 0"},
		{Name: "updatedAt", Type: "DATETIME", Modifiers: "NOT NULL DEFAULT CURRENT_TIMESTAMP"},
	},
	PrimaryKey: []string{"uid"},
}

// All lists every table the engine reconciles at startup, in creation order.
func All() []TableSchema {
	return []TableSchema{
		UserTable,
		PlotTable,
		SeedTable,
		CropTable,
		TheftTable,
		SignLogTable,
		SignSummaryTable,
	}
}
