package gormdb

import "point-record/core/point"

// SeriesRow is one registered series identifier.
type SeriesRow struct {
	Name  string `gorm:"column:name;primaryKey;size:191"`
	Units string `gorm:"column:units;size:64;not null;default:''"`
}

// TableName overrides the GORM table name.
func (SeriesRow) TableName() string { return "series" }

// PointRow is one persisted point.
type PointRow struct {
	Series     string  `gorm:"column:series;primaryKey;size:191"`
	Time       int64   `gorm:"column:ts;primaryKey;autoIncrement:false"`
	Value      float64 `gorm:"column:value"`
	Quality    uint32  `gorm:"column:quality"`
	Confidence float64 `gorm:"column:confidence"`
}

// TableName overrides the GORM table name.
func (PointRow) TableName() string { return "points" }

func toRow(id string, p point.Point) PointRow {
	return PointRow{
		Series:     id,
		Time:       p.Time,
		Value:      p.Value,
		Quality:    uint32(p.Quality),
		Confidence: p.Confidence,
	}
}

func (r PointRow) toPoint() point.Point {
	return point.Point{
		Time:       r.Time,
		Value:      r.Value,
		Quality:    point.Quality(r.Quality),
		Confidence: r.Confidence,
	}
}
