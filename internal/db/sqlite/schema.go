package sqlite

import (
	"github.com/carefinder/carefinder/internal/db"
	"github.com/carefinder/carefinder/internal/domain/facility"
)

const table = "facilities"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS facilities (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		stcode         TEXT NOT NULL UNIQUE,
		crname         TEXT NOT NULL,
		crtypename     TEXT,
		crstatusname   TEXT,
		craddr         TEXT,
		sigunname      TEXT,
		zipcode        TEXT,
		la             REAL,
		lo             REAL,
		crtelno        TEXT,
		crfaxno        TEXT,
		crhome         TEXT,
		crcapat        INTEGER,
		crchcnt        INTEGER,
		crcnfmdt       TEXT,
		crabldt        TEXT,
		crpausebegindt TEXT,
		crpauseenddt   TEXT,
		crspec         TEXT,
		crcargbname    TEXT,
		nrtrroomcnt    INTEGER,
		nrtrroomsize   REAL,
		plgrdco        INTEGER,
		cctvinstlcnt   INTEGER,
		chcrtescnt     INTEGER,
		class_cnt_00   INTEGER,
		class_cnt_01   INTEGER,
		class_cnt_02   INTEGER,
		class_cnt_03   INTEGER,
		class_cnt_04   INTEGER,
		class_cnt_05   INTEGER,
		class_cnt_m2   INTEGER,
		class_cnt_m5   INTEGER,
		class_cnt_sp   INTEGER,
		class_cnt_tot  INTEGER,
		child_cnt_00   INTEGER,
		child_cnt_01   INTEGER,
		child_cnt_02   INTEGER,
		child_cnt_03   INTEGER,
		child_cnt_04   INTEGER,
		child_cnt_05   INTEGER,
		child_cnt_m2   INTEGER,
		child_cnt_m5   INTEGER,
		child_cnt_sp   INTEGER,
		child_cnt_tot  INTEGER,
		datastdrdt     TEXT,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_facilities_status ON facilities(crstatusname)`,
	`CREATE INDEX IF NOT EXISTS idx_facilities_district ON facilities(sigunname)`,
	`CREATE INDEX IF NOT EXISTS idx_facilities_type ON facilities(crtypename)`,
}

// columns maps logical filter fields to facilities table columns.
var columns = db.Columns{
	facility.FieldID:              "stcode",
	facility.FieldStatus:          "crstatusname",
	facility.FieldDistrict:        "sigunname",
	facility.FieldType:            "crtypename",
	facility.FieldPlaygroundCount: "plgrdco",
	facility.FieldCCTVCount:       "cctvinstlcnt",
	facility.FieldVehicle:         "crcargbname",
	facility.FieldSpecialServices: "crspec",
	facility.Age0.ClassField():    "class_cnt_00",
	facility.Age1.ClassField():    "class_cnt_01",
	facility.Age2.ClassField():    "class_cnt_02",
	facility.Age3.ClassField():    "class_cnt_03",
	facility.Age4.ClassField():    "class_cnt_04",
	facility.Age5.ClassField():    "class_cnt_05",
}

// dataColumns are the columns written by an upsert, excluding keys and timestamps.
var dataColumns = []string{
	"crname", "crtypename", "crstatusname", "craddr", "sigunname", "zipcode",
	"la", "lo", "crtelno", "crfaxno", "crhome", "crcapat", "crchcnt",
	"crcnfmdt", "crabldt", "crpausebegindt", "crpauseenddt", "crspec", "crcargbname",
	"nrtrroomcnt", "nrtrroomsize", "plgrdco", "cctvinstlcnt", "chcrtescnt",
	"class_cnt_00", "class_cnt_01", "class_cnt_02", "class_cnt_03", "class_cnt_04", "class_cnt_05",
	"class_cnt_m2", "class_cnt_m5", "class_cnt_sp", "class_cnt_tot",
	"child_cnt_00", "child_cnt_01", "child_cnt_02", "child_cnt_03", "child_cnt_04", "child_cnt_05",
	"child_cnt_m2", "child_cnt_m5", "child_cnt_sp", "child_cnt_tot",
	"datastdrdt",
}
