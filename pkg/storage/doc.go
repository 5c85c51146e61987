// Package storage places mod archives on disk and reads them back.
//
// Mods live under <mods>/<factorio version>/ either as Name_Version.zip
// archives or as unpacked Name_Version directories. Each carries an
// info.json, inside the archive's top-level folder or at the directory root,
// which is the source of a mod's identity.
package storage
