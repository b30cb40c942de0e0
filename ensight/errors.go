package ensight

import "errors"

var (
	ErrNotEnSightGold   = errors.New("not an EnSight Gold case file")
	ErrUndefinedFileSet = errors.New("file set referenced but never defined")
	ErrPartNotFound     = errors.New("part id not found")
	ErrRigidBodyFormat  = errors.New("invalid rigid body file")
)
