package ledger

import "venue-booking/common/contract"

type Queries struct {
	db contract.DbConn
}

func New(db contract.DbConn) *Queries {
	return &Queries{db: db}
}
