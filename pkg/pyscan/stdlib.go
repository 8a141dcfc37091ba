package pyscan

// stdlibModules is the fixed allowlist of standard-library module names that
// are never treated as external dependencies. Names are compared after
// lower-casing the top-level import segment.
var stdlibModules = map[string]struct{}{
	"__future__":      {},
	"argparse":        {},
	"array":           {},
	"ast":             {},
	"asyncio":         {},
	"base64":          {},
	"binascii":        {},
	"bisect":          {},
	"bz2":             {},
	"calendar":        {},
	"cmath":           {},
	"collections":     {},
	"contextlib":      {},
	"copy":            {},
	"csv":             {},
	"dataclasses":     {},
	"datetime":        {},
	"decimal":         {},
	"difflib":         {},
	"enum":            {},
	"fnmatch":         {},
	"fractions":       {},
	"ftplib":          {},
	"functools":       {},
	"getpass":         {},
	"gettext":         {},
	"glob":            {},
	"gzip":            {},
	"hashlib":         {},
	"heapq":           {},
	"hmac":            {},
	"html":            {},
	"http":            {},
	"imaplib":         {},
	"itertools":       {},
	"json":            {},
	"locale":          {},
	"logging":         {},
	"lzma":            {},
	"math":            {},
	"mmap":            {},
	"multiprocessing": {},
	"numbers":         {},
	"operator":        {},
	"os":              {},
	"pathlib":         {},
	"pickle":          {},
	"platform":        {},
	"poplib":          {},
	"queue":           {},
	"random":          {},
	"re":              {},
	"secrets":         {},
	"select":          {},
	"shutil":          {},
	"smtplib":         {},
	"socket":          {},
	"sqlite3":         {},
	"ssl":             {},
	"statistics":      {},
	"string":          {},
	"struct":          {},
	"subprocess":      {},
	"sys":             {},
	"tarfile":         {},
	"telnetlib":       {},
	"tempfile":        {},
	"textwrap":        {},
	"threading":       {},
	"time":            {},
	"typing":          {},
	"unittest":        {},
	"urllib":          {},
	"uuid":            {},
	"xml":             {},
	"zipfile":         {},
}
