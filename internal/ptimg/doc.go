// Package ptimg reconstructs pages published with an explicit scramble map
// (the "*.ptimg.json" document). Each view names its output size and a list of
// "id:x,y+w,h>x,y" directives over the map's resources.
package ptimg
