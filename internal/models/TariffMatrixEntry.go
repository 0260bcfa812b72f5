package models

// TariffMatrixEntry is a distance between two transit points in one of the
// book 3 matrices. MatrixSeq is the load order of the matrix; lookups walk
// matrices in that order.
type TariffMatrixEntry struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Matrix    string `json:"matrix" gorm:"index;not null"`
	MatrixSeq int    `json:"matrix_seq" gorm:"index"`
	FromPoint string `json:"from_point" gorm:"not null"`
	ToPoint   string `json:"to_point" gorm:"not null"`
	KM        int    `json:"km"`
}
