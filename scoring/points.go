package scoring

// Playoff point values fed into the season standings accumulator. These are
// accrued into a separate pool from regular-season points and decide Chase
// seeding and elimination.
const (
	RaceWinPlayoffPoints     = 5
	StageWinPlayoffPoints    = 1
	FreePickWinPlayoffPoints = 1

	// FreePickWinPoints is the flat regular-season award for winning a
	// free-pick race; every other finish in a free-pick race scores zero.
	FreePickWinPoints = 10

	// UsageCap is the number of times a driver may be picked per season in
	// non-free-pick races before the over-usage penalty applies.
	UsageCap = 2

	// RegularSeasonWinnerBonus is the playoff-point award for leading the
	// standings when the regular season closes.
	RegularSeasonWinnerBonus = 15
)

// pointsByPosition maps a finishing position to base fantasy points.
// 1st place gets a premium; positions 2-35 step down by one point each;
// everything from 36th back is worth a single point.
var pointsByPosition = map[int]int{
	1: 40, 2: 35, 3: 34, 4: 33, 5: 32,
	6: 31, 7: 30, 8: 29, 9: 28, 10: 27,
	11: 26, 12: 25, 13: 24, 14: 23, 15: 22,
	16: 21, 17: 20, 18: 19, 19: 18, 20: 17,
	21: 16, 22: 15, 23: 14, 24: 13, 25: 12,
	26: 11, 27: 10, 28: 9, 29: 8, 30: 7,
	31: 6, 32: 5, 33: 4, 34: 3, 35: 2,
}

// PointsForPosition returns the base points for a finishing position.
// Positions beyond the table floor at one point.
func PointsForPosition(position int) int {
	if pts, ok := pointsByPosition[position]; ok {
		return pts
	}
	return 1
}
