package sqlite

import (
	"database/sql"
	"time"

	"github.com/carefinder/carefinder/internal/domain/facility"
)

// row is the facilities table layout. Nullable columns use sql.Null types.
type row struct {
	ID             int64           `db:"id"`
	StCode         string          `db:"stcode"`
	CrName         string          `db:"crname"`
	CrTypeName     sql.NullString  `db:"crtypename"`
	CrStatusName   sql.NullString  `db:"crstatusname"`
	CrAddr         sql.NullString  `db:"craddr"`
	SigunName      sql.NullString  `db:"sigunname"`
	ZipCode        sql.NullString  `db:"zipcode"`
	La             sql.NullFloat64 `db:"la"`
	Lo             sql.NullFloat64 `db:"lo"`
	CrTelNo        sql.NullString  `db:"crtelno"`
	CrFaxNo        sql.NullString  `db:"crfaxno"`
	CrHome         sql.NullString  `db:"crhome"`
	CrCapat        sql.NullInt64   `db:"crcapat"`
	CrChCnt        sql.NullInt64   `db:"crchcnt"`
	CrCnfmDt       sql.NullString  `db:"crcnfmdt"`
	CrAblDt        sql.NullString  `db:"crabldt"`
	CrPauseBeginDt sql.NullString  `db:"crpausebegindt"`
	CrPauseEndDt   sql.NullString  `db:"crpauseenddt"`
	CrSpec         sql.NullString  `db:"crspec"`
	CrCarGbName    sql.NullString  `db:"crcargbname"`
	NrtrRoomCnt    sql.NullInt64   `db:"nrtrroomcnt"`
	NrtrRoomSize   sql.NullFloat64 `db:"nrtrroomsize"`
	PlgrdCo        sql.NullInt64   `db:"plgrdco"`
	CCTVInstlCnt   sql.NullInt64   `db:"cctvinstlcnt"`
	ChcrtesCnt     sql.NullInt64   `db:"chcrtescnt"`
	ClassCnt00     sql.NullInt64   `db:"class_cnt_00"`
	ClassCnt01     sql.NullInt64   `db:"class_cnt_01"`
	ClassCnt02     sql.NullInt64   `db:"class_cnt_02"`
	ClassCnt03     sql.NullInt64   `db:"class_cnt_03"`
	ClassCnt04     sql.NullInt64   `db:"class_cnt_04"`
	ClassCnt05     sql.NullInt64   `db:"class_cnt_05"`
	ClassCntM2     sql.NullInt64   `db:"class_cnt_m2"`
	ClassCntM5     sql.NullInt64   `db:"class_cnt_m5"`
	ClassCntSp     sql.NullInt64   `db:"class_cnt_sp"`
	ClassCntTot    sql.NullInt64   `db:"class_cnt_tot"`
	ChildCnt00     sql.NullInt64   `db:"child_cnt_00"`
	ChildCnt01     sql.NullInt64   `db:"child_cnt_01"`
	ChildCnt02     sql.NullInt64   `db:"child_cnt_02"`
	ChildCnt03     sql.NullInt64   `db:"child_cnt_03"`
	ChildCnt04     sql.NullInt64   `db:"child_cnt_04"`
	ChildCnt05     sql.NullInt64   `db:"child_cnt_05"`
	ChildCntM2     sql.NullInt64   `db:"child_cnt_m2"`
	ChildCntM5     sql.NullInt64   `db:"child_cnt_m5"`
	ChildCntSp     sql.NullInt64   `db:"child_cnt_sp"`
	ChildCntTot    sql.NullInt64   `db:"child_cnt_tot"`
	DataStdrDt     sql.NullString  `db:"datastdrdt"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r *row) toDomain() facility.Facility {
	f := facility.Facility{
		ID:              r.StCode,
		Name:            r.CrName,
		TypeName:        r.CrTypeName.String,
		StatusName:      r.CrStatusName.String,
		Address:         r.CrAddr.String,
		District:        r.SigunName.String,
		ZipCode:         r.ZipCode.String,
		Phone:           r.CrTelNo.String,
		Fax:             r.CrFaxNo.String,
		Homepage:        r.CrHome.String,
		Capacity:        int(r.CrCapat.Int64),
		CurrentChildren: int(r.CrChCnt.Int64),
		ApprovedAt:      r.CrCnfmDt.String,
		AbolishedAt:     r.CrAblDt.String,
		PauseBeginAt:    r.CrPauseBeginDt.String,
		PauseEndAt:      r.CrPauseEndDt.String,
		SpecialServices: r.CrSpec.String,
		RoomCount:       int(r.NrtrRoomCnt.Int64),
		RoomArea:        r.NrtrRoomSize.Float64,
		PlaygroundCount: int(r.PlgrdCo.Int64),
		CCTVCount:       int(r.CCTVInstlCnt.Int64),
		StaffCount:      int(r.ChcrtesCnt.Int64),
		Classes: facility.AgeCounts{
			Age0: int(r.ClassCnt00.Int64), Age1: int(r.ClassCnt01.Int64), Age2: int(r.ClassCnt02.Int64),
			Age3: int(r.ClassCnt03.Int64), Age4: int(r.ClassCnt04.Int64), Age5: int(r.ClassCnt05.Int64),
			MixedInfant: int(r.ClassCntM2.Int64), MixedToddler: int(r.ClassCntM5.Int64),
			Special: int(r.ClassCntSp.Int64), Total: int(r.ClassCntTot.Int64),
		},
		Children: facility.AgeCounts{
			Age0: int(r.ChildCnt00.Int64), Age1: int(r.ChildCnt01.Int64), Age2: int(r.ChildCnt02.Int64),
			Age3: int(r.ChildCnt03.Int64), Age4: int(r.ChildCnt04.Int64), Age5: int(r.ChildCnt05.Int64),
			MixedInfant: int(r.ChildCntM2.Int64), MixedToddler: int(r.ChildCntM5.Int64),
			Special: int(r.ChildCntSp.Int64), Total: int(r.ChildCntTot.Int64),
		},
		DataDate:  r.DataStdrDt.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.La.Valid {
		v := r.La.Float64
		f.Latitude = &v
	}
	if r.Lo.Valid {
		v := r.Lo.Float64
		f.Longitude = &v
	}
	if r.CrCarGbName.Valid {
		v := r.CrCarGbName.String
		f.Vehicle = &v
	}
	return f
}

func fromDomain(f *facility.Facility) row {
	r := row{
		StCode:         f.ID,
		CrName:         f.Name,
		CrTypeName:     nullString(f.TypeName),
		CrStatusName:   nullString(f.StatusName),
		CrAddr:         nullString(f.Address),
		SigunName:      nullString(f.District),
		ZipCode:        nullString(f.ZipCode),
		CrTelNo:        nullString(f.Phone),
		CrFaxNo:        nullString(f.Fax),
		CrHome:         nullString(f.Homepage),
		CrCapat:        nullInt(f.Capacity),
		CrChCnt:        nullInt(f.CurrentChildren),
		CrCnfmDt:       nullString(f.ApprovedAt),
		CrAblDt:        nullString(f.AbolishedAt),
		CrPauseBeginDt: nullString(f.PauseBeginAt),
		CrPauseEndDt:   nullString(f.PauseEndAt),
		CrSpec:         nullString(f.SpecialServices),
		NrtrRoomCnt:    nullInt(f.RoomCount),
		NrtrRoomSize:   sql.NullFloat64{Float64: f.RoomArea, Valid: true},
		PlgrdCo:        nullInt(f.PlaygroundCount),
		CCTVInstlCnt:   nullInt(f.CCTVCount),
		ChcrtesCnt:     nullInt(f.StaffCount),
		ClassCnt00:     nullInt(f.Classes.Age0),
		ClassCnt01:     nullInt(f.Classes.Age1),
		ClassCnt02:     nullInt(f.Classes.Age2),
		ClassCnt03:     nullInt(f.Classes.Age3),
		ClassCnt04:     nullInt(f.Classes.Age4),
		ClassCnt05:     nullInt(f.Classes.Age5),
		ClassCntM2:     nullInt(f.Classes.MixedInfant),
		ClassCntM5:     nullInt(f.Classes.MixedToddler),
		ClassCntSp:     nullInt(f.Classes.Special),
		ClassCntTot:    nullInt(f.Classes.Total),
		ChildCnt00:     nullInt(f.Children.Age0),
		ChildCnt01:     nullInt(f.Children.Age1),
		ChildCnt02:     nullInt(f.Children.Age2),
		ChildCnt03:     nullInt(f.Children.Age3),
		ChildCnt04:     nullInt(f.Children.Age4),
		ChildCnt05:     nullInt(f.Children.Age5),
		ChildCntM2:     nullInt(f.Children.MixedInfant),
		ChildCntM5:     nullInt(f.Children.MixedToddler),
		ChildCntSp:     nullInt(f.Children.Special),
		ChildCntTot:    nullInt(f.Children.Total),
		DataStdrDt:     nullString(f.DataDate),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
	if f.Latitude != nil {
		r.La = sql.NullFloat64{Float64: *f.Latitude, Valid: true}
	}
	if f.Longitude != nil {
		r.Lo = sql.NullFloat64{Float64: *f.Longitude, Valid: true}
	}
	if f.Vehicle != nil {
		r.CrCarGbName = sql.NullString{String: *f.Vehicle, Valid: true}
	}
	return r
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
