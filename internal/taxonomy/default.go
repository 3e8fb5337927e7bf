package taxonomy

import (
	"sync"

	"radiolink/catalog/internal/domain"
)

// Category ids of the distributor's catalog. Products reference these values
// in their classification fields.
const (
	MotorolaSolutions domain.CategoryID = "motorola-solutions"
	CambiumNetworks   domain.CategoryID = "cambium-networks"

	APXSeries   domain.CategoryID = "apx-series"
	MOTOTRBO    domain.CategoryID = "mototrbo"
	TETRA       domain.CategoryID = "tetra"
	Talkabout   domain.CategoryID = "talkabout"
	BodyCameras domain.CategoryID = "body-cameras"

	APXPortable       domain.CategoryID = "apx-portable-radios"
	APXMobile         domain.CategoryID = "apx-mobile-radios"
	MOTOTRBOPortable  domain.CategoryID = "mototrbo-portable-radios"
	MOTOTRBOMobile    domain.CategoryID = "mototrbo-mobile-radios"
	MOTOTRBORepeaters domain.CategoryID = "mototrbo-repeaters"
	TETRAPortable     domain.CategoryID = "tetra-portable-radios"
	TETRAMobile       domain.CategoryID = "tetra-mobile-radios"

	APXNext          domain.CategoryID = "apx-next"
	APXNSeries       domain.CategoryID = "apx-n-series"
	MOTOTRBORSeries  domain.CategoryID = "mototrbo-r-series"
	MOTOTRBOSLSeries domain.CategoryID = "mototrbo-sl-series"
	MOTOTRBOIon      domain.CategoryID = "mototrbo-ion"
	MOTOTRBODMSeries domain.CategoryID = "mototrbo-dm-series"
	TETRAMXPSeries   domain.CategoryID = "tetra-mxp-series"
	TETRAMTMSeries   domain.CategoryID = "tetra-mtm-series"
)

var defaultEntries = []Entry{
	{
		ID:    MotorolaSolutions,
		Label: "Motorola Solutions",
		Children: []Entry{
			{
				ID:    APXSeries,
				Label: "APX Series",
				Children: []Entry{
					{
						ID:    APXPortable,
						Label: "APX Portable Radios",
						Children: []Entry{
							{ID: APXNext, Label: "APX NEXT"},
							{ID: APXNSeries, Label: "APX N Series"},
						},
					},
					{ID: APXMobile, Label: "APX Mobile Radios"},
				},
			},
			{
				ID:    MOTOTRBO,
				Label: "MOTOTRBO",
				Children: []Entry{
					{
						ID:    MOTOTRBOPortable,
						Label: "MOTOTRBO Portable Radios",
						Children: []Entry{
							{ID: MOTOTRBORSeries, Label: "R Series"},
							{ID: MOTOTRBOSLSeries, Label: "SL Series"},
							{ID: MOTOTRBOIon, Label: "MOTOTRBO Ion"},
						},
					},
					{
						ID:    MOTOTRBOMobile,
						Label: "MOTOTRBO Mobile Radios",
						Children: []Entry{
							{ID: MOTOTRBODMSeries, Label: "DM Series"},
						},
					},
					{ID: MOTOTRBORepeaters, Label: "Repeaters"},
				},
			},
			{
				ID:    TETRA,
				Label: "TETRA",
				Children: []Entry{
					{
						ID:    TETRAPortable,
						Label: "TETRA Portable Radios",
						Children: []Entry{
							{ID: TETRAMXPSeries, Label: "MXP Series"},
						},
					},
					{
						ID:    TETRAMobile,
						Label: "TETRA Mobile Radios",
						Children: []Entry{
							{ID: TETRAMTMSeries, Label: "MTM Series"},
						},
					},
				},
			},
			{ID: Talkabout, Label: "Talkabout"},
			// Body cameras have no sub-ranges; deeper paths are rejected.
			{ID: BodyCameras, Label: "Body Cameras"},
		},
	},
	{ID: CambiumNetworks, Label: "Cambium Networks"},
}

var (
	defaultOnce sync.Once
	defaultTree *Tree
)

// Default returns the distributor's category tree.
func Default() *Tree {
	defaultOnce.Do(func() {
		defaultTree = MustNew(defaultEntries...)
	})
	return defaultTree
}
