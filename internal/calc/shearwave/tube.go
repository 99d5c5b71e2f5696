package shearwave

import (
	"fmt"
	"math"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/standards"
)

const (
	tubeODTol   = 0.10
	tubeWallTol = 0.25
)

// DefaultTubeStandard sizes notches when the request names no standard.
const DefaultTubeStandard = standards.ASTME428

type TubeSize struct {
	ID     string  `json:"id"`
	ODMM   float64 `json:"od_mm"`
	WallMM float64 `json:"wall_mm"`
}

// common seamless tube sizes (1/4 in. to 6 in. NPS)
var tubes = []TubeSize{
	{ID: "TR-006", ODMM: 6.35, WallMM: 0.89},
	{ID: "TR-010", ODMM: 9.53, WallMM: 1.24},
	{ID: "TR-013", ODMM: 12.7, WallMM: 1.65},
	{ID: "TR-019", ODMM: 19.05, WallMM: 2.11},
	{ID: "TR-025", ODMM: 25.4, WallMM: 2.77},
	{ID: "TR-033", ODMM: 33.4, WallMM: 3.38},
	{ID: "TR-048", ODMM: 48.3, WallMM: 3.68},
	{ID: "TR-060", ODMM: 60.3, WallMM: 3.91},
	{ID: "TR-089", ODMM: 88.9, WallMM: 5.49},
	{ID: "TR-114", ODMM: 114.3, WallMM: 6.02},
	{ID: "TR-168", ODMM: 168.3, WallMM: 7.11},
}

func TubeSizes() []TubeSize {
	return append([]TubeSize(nil), tubes...)
}

type TubeInput struct {
	ODMM     float64 `json:"od_mm"`
	WallMM   float64 `json:"wall_mm"`
	Standard string  `json:"standard"`
}

type TubeReference struct {
	Tube      *TubeSize          `json:"tube"`
	Custom    bool               `json:"custom"`
	ODMM      float64            `json:"od_mm"`
	WallMM    float64            `json:"wall_mm"`
	Standard  standards.Standard `json:"standard"`
	Notches   []blockspec.Notch  `json:"notches"`
	Reasoning string             `json:"reasoning"`
}

// SelectTubeReference matches a tube against the stock reference bank (OD
// within 10 %, wall within 25 %). Without a match a custom reference with
// the part's own OD and wall is specified.
func SelectTubeReference(in TubeInput) (TubeReference, error) {
	if in.ODMM <= 0 || in.WallMM <= 0 {
		return TubeReference{}, fmt.Errorf("tube OD and wall must be positive")
	}
	if 2*in.WallMM >= in.ODMM {
		return TubeReference{}, fmt.Errorf("wall %.2f mm is too thick for OD %.2f mm", in.WallMM, in.ODMM)
	}
	std := DefaultTubeStandard
	if in.Standard != "" {
		var err error
		if std, err = standards.Parse(in.Standard); err != nil {
			return TubeReference{}, err
		}
	}

	var (
		best  *TubeSize
		score = math.Inf(1)
	)
	for i := range tubes {
		t := tubes[i]
		od, wall := deviation(in.ODMM, t.ODMM), deviation(in.WallMM, t.WallMM)
		if od > tubeODTol+eps || wall > tubeWallTol+eps {
			continue
		}
		if s := od + wall; s < score {
			best, score = &t, s
		}
	}

	ref := TubeReference{Standard: std}
	if best != nil {
		ref.Tube = best
		ref.ODMM, ref.WallMM = best.ODMM, best.WallMM
		ref.Reasoning = fmt.Sprintf("stock reference %s (%.2f x %.2f mm) within %.0f%% OD and %.0f%% wall of the part",
			best.ID, best.ODMM, best.WallMM, tubeODTol*100, tubeWallTol*100)
	} else {
		ref.Custom = true
		ref.ODMM, ref.WallMM = in.ODMM, in.WallMM
		ref.Reasoning = fmt.Sprintf("no stock reference within %.0f%% OD and %.0f%% wall, machine a custom reference %.2f x %.2f mm",
			tubeODTol*100, tubeWallTol*100, in.ODMM, in.WallMM)
	}

	notches, err := blockspec.CalculateNotches(std, ref.WallMM)
	if err != nil {
		return TubeReference{}, err
	}
	ref.Notches = notches
	return ref, nil
}
