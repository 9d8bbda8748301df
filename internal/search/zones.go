package search

// TfL transport zone to London postcode district mapping. Each district is
// assigned to the zone covering the majority of its area.
var tflZones = map[int][]string{
	1: {
		"EC1", "EC2", "EC3", "EC4",
		"WC1", "WC2",
		"W1",
		"SW1",
		"SE1",
		"N1",
		"E1",
	},
	2: {
		"NW1", "NW3", "NW5", "NW6", "NW8",
		"W2", "W6", "W9", "W10", "W11", "W12", "W14",
		"SW3", "SW5", "SW6", "SW7", "SW8", "SW9", "SW10", "SW11",
		"SE5", "SE11", "SE15", "SE17",
		"E2", "E3", "E8", "E9", "E14",
		"N4", "N5", "N7", "N16", "N19",
	},
	3: {
		"NW2", "NW4", "NW10",
		"W3", "W4", "W5", "W7", "W13",
		"SW12", "SW14", "SW15", "SW16", "SW17", "SW18", "SW19", "SW20",
		"SE4", "SE6", "SE8", "SE10", "SE12", "SE13", "SE14", "SE18",
		"SE22", "SE23", "SE24", "SE25", "SE26",
		"E5", "E10", "E11", "E12", "E13", "E15", "E17",
		"N8", "N11", "N13", "N17", "N22",
	},
	4: {
		"HA0", "HA1", "HA2", "HA3",
		"UB1", "UB2", "UB3", "UB4",
		"TW1", "TW2", "TW3", "TW4", "TW7", "TW8", "TW9", "TW10", "TW11", "TW12",
		"SM1", "SM2", "SM3", "SM4",
		"CR0", "CR4",
		"BR1", "BR2", "BR3",
		"SE2", "SE9", "SE16", "SE19", "SE20", "SE21", "SE27",
		"E4", "E6", "E7", "E16", "E18",
		"N9", "N12", "N14", "N15", "N18", "N20", "N21",
	},
	5: {
		"HA4", "HA5", "HA6", "HA7", "HA8", "HA9",
		"UB5", "UB6", "UB7", "UB8", "UB9", "UB10",
		"TW5", "TW6", "TW13", "TW14", "TW15", "TW16",
		"KT1", "KT2", "KT3", "KT4", "KT5", "KT6",
		"SM5", "SM6", "SM7",
		"CR2", "CR5", "CR7", "CR8",
		"BR4", "BR5", "BR6",
		"IG1", "IG2", "IG3", "IG4", "IG5",
		"RM1", "RM2", "RM6", "RM7", "RM8", "RM9", "RM10",
		"EN1", "EN2", "EN3", "EN4",
	},
}

// ExpandZones returns the postcode districts for the given zone numbers,
// deduplicated, preserving zone order then in-zone order.
func ExpandZones(zones []int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, zone := range zones {
		for _, district := range tflZones[zone] {
			if _, ok := seen[district]; ok {
				continue
			}
			seen[district] = struct{}{}
			out = append(out, district)
		}
	}
	return out
}
