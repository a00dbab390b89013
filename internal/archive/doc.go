// Package archive packages a set of files into a compressed container and
// expands it again.
//
// [TarGz] writes gzip-compressed tar streams that depend only on the file
// paths and contents: entries are written in sorted order with a fixed mode
// and modification time and no owner information, so identical trees produce
// identical archives. Extraction refuses entries that would land outside the
// destination and any entry type other than regular files and directories.
package archive
