// Package utils provides loose type conversions for values read from
// backing stores and request parameters, where the dynamic type of a field
// depends on the driver or the client.
package utils
