package logging

import (
	"github.com/Station-Manager/apibooster/errorrecord"
)

// Maximum number of data entries logged per level
const maxDumpData = 10

// DumpRecord logs the levels of rec at Debug level, outermost first, one
// event per level. Each event carries the level depth, exception type,
// target site and up to maxDumpData data entries, which keeps long chains
// readable on the console where the single ErrorRecord field is not.
func DumpRecord(l Logger, rec *errorrecord.ErrorRecord) {
	if l == nil || rec == nil {
		return
	}

	depth := 0
	for cur := rec; cur != nil; cur = cur.InnerError {
		evt := l.DebugWith().
			Int("depth", depth).
			Str("exceptionType", cur.ExceptionType)

		if site := joinSite(cur); site != emptyString {
			evt.Str("targetSite", site)
		}

		for i, d := range cur.Data {
			if i == maxDumpData {
				evt.Int("dataOmitted", len(cur.Data)-maxDumpData)
				break
			}
			evt.Interface("data."+d.Key, d.Value)
		}

		evt.Msgf("Dump: %s", cur.Message)
		depth++
	}
}

func joinSite(rec *errorrecord.ErrorRecord) string {
	site := deref(rec.DeclaringTypeName)
	if name := deref(rec.TargetSiteName); name != emptyString {
		if site != emptyString {
			site += "."
		}
		site += name
	}
	if module := deref(rec.ModuleName); module != emptyString {
		if site == emptyString {
			return module
		}
		return module + ": " + site
	}
	return site
}

func deref(s *string) string {
	if s == nil {
		return emptyString
	}
	return *s
}
