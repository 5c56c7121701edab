package oss

var NormalizeEndpoint = normalizeEndpoint
