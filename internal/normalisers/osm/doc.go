// Package osm normalises OpenStreetMap golf course elements into canonical
// courses.
//
// # Tag Mapping
//
//	name           name
//	city           addr:city, is_in:city
//	state          addr:state, is_in:state_code, is_in:state (partition code if absent)
//	country        addr:country, is_in:country_code, is_in:country (US if absent)
//	holes          golf:holes, holes
//	website        website, contact:website, url (http(s) only)
//	aliases        alt_name, short_name, official_name, name:en
//
// Elements without a name or coordinates, elements tagged with a leisure
// value other than golf_course, and elements located in another country
// than the partition are rejected with a *domain.ValidationError.
package osm
