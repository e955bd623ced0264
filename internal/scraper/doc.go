// Package scraper fetches the IRAG hospital-occupancy dashboard.
//
// The dashboard only serves its trend page to a client holding a session
// cookie, so a fetch first opens the home page and then posts the trend form
// for a date. The returned page embeds the series in its chart scripts; any
// failure to get a 200 response is reported as an *AcquisitionError.
package scraper
