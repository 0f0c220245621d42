package pgxcasbin

import "errors"

var (
	ErrArgsTooLong  = errors.New("pgxcasbin: args length exceeds field count")
	ErrRuleTooLong  = errors.New("pgxcasbin: rule length exceeds field count")
	ErrEmptyPtype   = errors.New("pgxcasbin: ptype is empty")
	ErrSelect       = errors.New("pgxcasbin: select rules")
	ErrScanRow      = errors.New("pgxcasbin: scan rule")
	ErrDelete       = errors.New("pgxcasbin: delete rules")
	ErrBatchExec    = errors.New("pgxcasbin: execute batch")
	ErrBeginTx      = errors.New("pgxcasbin: begin transaction")
	ErrCommitTx     = errors.New("pgxcasbin: commit transaction")
	ErrNotify       = errors.New("pgxcasbin: notify policy change")
	ErrListen       = errors.New("pgxcasbin: listen for policy changes")
	ErrUnknownEvent = errors.New("pgxcasbin: unknown policy event")
)
