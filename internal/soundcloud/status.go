package soundcloud

import (
	"strconv"
	"strings"
)

var statusPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",

	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",

	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	307: "Temporary Redirect",

	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request-URI Too Long",
	415: "Unsupported Media Type",
	416: "Requested Range Not Satisfiable",
	417: "Expectation Failed",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	426: "Upgrade Required",

	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	507: "Insufficient Storage",
	510: "Not Extended",
}

// ReasonPhrase returns the reason phrase for code, or "" for codes outside the table.
func ReasonPhrase(code int) string {
	return statusPhrases[code]
}

// InterpretStatus renders code with its reason phrase, e.g. "404 Not Found".
// Unknown codes render as the bare number.
func InterpretStatus(code int) string {
	return strings.TrimSpace(strconv.Itoa(code) + " " + ReasonPhrase(code))
}
