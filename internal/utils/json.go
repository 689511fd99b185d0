package utils

import jsoniter "github.com/json-iterator/go"

// Json is the module-wide JSON codec.
var Json = jsoniter.ConfigCompatibleWithStandardLibrary
