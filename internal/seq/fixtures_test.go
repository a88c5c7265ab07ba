package seq

import "github.com/roach88/kindseq/internal/testutil"

var (
	Int    = testutil.Int
	Double = testutil.Double
	Char   = testutil.Char
	Long   = testutil.Long
	Short  = testutil.Short
)
