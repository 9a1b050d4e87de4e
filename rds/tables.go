package rds

// PTYName returns the program type name from the RDS (Europe) or RBDS
// (North America) table.
func PTYName(pty int, rbds bool) string {
	if pty < 0 || pty > 31 {
		return ""
	}
	if rbds {
		return ptyRBDS[pty]
	}
	return ptyRDS[pty]
}

// GroupName describes what a group code carries.
func GroupName(code int) string {
	t, v := GroupType(code & 0x1f)
	if v == 'A' {
		return groupNamesA[t]
	}
	return groupNamesB[t]
}

var ptyRBDS = [32]string{
	"No program type",
	"News",
	"Information",
	"Sports",
	"Talk",
	"Rock",
	"Classic Rock",
	"Adult Hits",
	"Soft Rock",
	"Top 40",
	"Country",
	"Oldies",
	"Soft",
	"Nostalgia",
	"Jazz",
	"Classical",
	"Rhythm and Blues",
	"Soft Rhythm and Blues",
	"Language",
	"Religious Music",
	"Religious Talk",
	"Personality",
	"Public",
	"College",
	"Spanish Talk",
	"Spanish Music",
	"Hip Hop",
	"Unassigned",
	"Unassigned",
	"Weather",
	"Emergency Test",
	"Emergency",
}

var ptyRDS = [32]string{
	"No program type",
	"News",
	"Current Affairs",
	"Information",
	"Sport",
	"Education",
	"Drama",
	"Culture",
	"Science",
	"Varied",
	"Pop Music",
	"Rock Music",
	"Easy Listening",
	"Light Classical",
	"Serious Classical",
	"Other Music",
	"Weather",
	"Finance",
	"Children's Programs",
	"Social Affairs",
	"Religion",
	"Phone-In",
	"Travel",
	"Leisure",
	"Jazz Music",
	"Country Music",
	"National Music",
	"Oldies Music",
	"Folk Music",
	"Documentary",
	"Alarm Test",
	"Alarm",
}

var groupNamesA = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number and Slow Labeling Codes only",
	"Radio Text only",
	"Applications Identification for ODA only",
	"Clock Time and Date only",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Traffic Message Channel or ODA",
	"Emergency Warning System or ODA",
	"Program Type Name",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Radio Paging or ODA",
	"Enhanced Other Networks Information Only",
	"Long PS",
}

var groupNamesB = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number",
	"Radio Text only",
	"Open Data Applications",
	"Open Data Applications",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Other Networks Information Only",
	"Fast Switching Information only",
}
