package terminology

var defaultEntries = []Entry{
	{Term: "acft", Definition: "Army Combat Fitness Test"},
	{Term: "mdmp", Definition: "Military Decision Making Process"},
	{Term: "s1", Definition: "Personnel staff section"},
	{Term: "s2", Definition: "Intelligence staff section"},
	{Term: "s3", Definition: "Operations staff section"},
	{Term: "s4", Definition: "Logistics staff section"},
	{Term: "s5", Definition: "Plans staff section"},
	{Term: "s6", Definition: "Signal and communications staff section"},
	{Term: "ntc", Definition: "National Training Center"},
	{Term: "jrtc", Definition: "Joint Readiness Training Center"},
	{Term: "opord", Definition: "Operation Order"},
	{Term: "warno", Definition: "Warning Order"},
	{Term: "frago", Definition: "Fragmentary Order"},
	{Term: "coa", Definition: "Course of Action"},
	{Term: "coa analysis", Definition: "Course of action analysis and war-gaming"},
	{Term: "ccir", Definition: "Commander's Critical Information Requirements"},
	{Term: "mission analysis", Definition: "Second step of the MDMP"},
	{Term: "ncoer", Definition: "Noncommissioned Officer Evaluation Report"},
	{Term: "oer", Definition: "Officer Evaluation Report"},
	{Term: "da638", Definition: "DA Form 638, Recommendation for Award"},
	{Term: "da 638", Definition: "DA Form 638, Recommendation for Award"},
	{Term: "nco", Definition: "Noncommissioned Officer"},
	{Term: "xo", Definition: "Executive Officer"},
	{Term: "ftx", Definition: "Field Training Exercise"},
	{Term: "pcc", Definition: "Pre-Combat Checks"},
	{Term: "pci", Definition: "Pre-Combat Inspections"},
	{Term: "aar", Definition: "After Action Review"},
	{Term: "tlp", Definition: "Troop Leading Procedures"},
}

var defaultTable = mustNewTable(defaultEntries)

// DefaultTable returns the built-in terminology table
func DefaultTable() *Table {
	return defaultTable
}

func mustNewTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}
